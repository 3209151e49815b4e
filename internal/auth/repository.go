package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autostock/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, role, business_id, active, password_hash, password_algorithm, last_reset_at, reset_by, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Role, &u.BusinessID, &u.Active,
		&u.PasswordHash, &u.Algorithm, &u.LastResetAt, &u.ResetBy, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// GetByUsername returns a user by username, or nil when absent.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, q, username))
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, username, passwordHash string, role models.Role, businessID *uuid.UUID) (*models.User, error) {
	const q = `INSERT INTO users (username, password_hash, role, business_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, username, passwordHash, string(role), businessID))
}

// ListByBusiness returns the users of one tenant.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT id, username, role, business_id, active, created_at
		FROM users WHERE business_id = $1 ORDER BY username`
	rows, err := r.pool.Query(ctx, q, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.BusinessID, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// SetActive flips a user's active flag within one tenant; returns whether a
// row matched.
func (r *Repository) SetActive(ctx context.Context, businessID, id uuid.UUID, active bool) (bool, error) {
	const q = `UPDATE users SET active = $3 WHERE id = $1 AND business_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, businessID, active)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CountAll returns the number of users on the platform (global metrics).
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
