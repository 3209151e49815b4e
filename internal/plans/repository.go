package plans

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autostock/backend/internal/models"
)

// Repository handles subscription plan persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a plans repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, name, description, price, duration_days, created_at`

func scanPlan(row pgx.Row) (*models.Plan, error) {
	var p models.Plan
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a plan.
func (r *Repository) Create(ctx context.Context, name, description string, price float64, durationDays int) (*models.Plan, error) {
	const q = `INSERT INTO plans (name, description, price, duration_days)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns
	return scanPlan(r.pool.QueryRow(ctx, q, name, description, price, durationDays))
}

// GetByID returns a plan, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	const q = `SELECT ` + columns + ` FROM plans WHERE id = $1`
	return scanPlan(r.pool.QueryRow(ctx, q, id))
}

// List returns all plans, cheapest first.
func (r *Repository) List(ctx context.Context) ([]models.Plan, error) {
	const q = `SELECT ` + columns + ` FROM plans ORDER BY price, name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Plan
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update overwrites a plan's fields. Returns false when the plan is absent.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string, price float64, durationDays int) (bool, error) {
	const q = `UPDATE plans SET name = $2, description = $3, price = $4, duration_days = $5 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, name, description, price, durationDays)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
