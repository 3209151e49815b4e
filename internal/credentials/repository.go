package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the pgx-backed Directory. Credential columns live on the
// users row, never in a separate unscoped table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a credentials repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lookup returns the credential record for a principal, or nil when absent.
func (r *Repository) Lookup(ctx context.Context, id uuid.UUID) (*Record, error) {
	const q = `SELECT id, role, business_id, active, last_reset_at FROM users WHERE id = $1`
	var rec Record
	err := r.pool.QueryRow(ctx, q, id).Scan(&rec.PrincipalID, &rec.Role, &rec.BusinessID, &rec.Active, &rec.LastResetAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SecretHash returns the stored hash for an active principal, or "" when absent.
func (r *Repository) SecretHash(ctx context.Context, id uuid.UUID) (string, error) {
	const q = `SELECT password_hash FROM users WHERE id = $1 AND active`
	var hash string
	err := r.pool.QueryRow(ctx, q, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// ReplaceSecret is the single-row compare-and-update serializing resets.
// IS NOT DISTINCT FROM treats two NULL last_reset_at values as equal, so the
// very first reset still races correctly.
func (r *Repository) ReplaceSecret(ctx context.Context, id uuid.UUID, hash string, prevReset *time.Time, by uuid.UUID, at time.Time) (bool, error) {
	const q = `UPDATE users
		SET password_hash = $2, password_algorithm = 'bcrypt', last_reset_at = $3, reset_by = $4
		WHERE id = $1 AND active AND last_reset_at IS NOT DISTINCT FROM $5`
	tag, err := r.pool.Exec(ctx, q, id, hash, at, by, prevReset)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
