package businesses

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autostock/backend/internal/models"
)

// Repository handles business (tenant) persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a businesses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, name, owner_name, plan_id, subscription_state, expires_at, created_at`

func scanBusiness(row pgx.Row) (*models.Business, error) {
	var b models.Business
	err := row.Scan(&b.ID, &b.Name, &b.OwnerName, &b.PlanID, &b.SubscriptionState, &b.ExpiresAt, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a business.
func (r *Repository) Create(ctx context.Context, name, ownerName string, planID uuid.UUID, expiresAt time.Time) (*models.Business, error) {
	const q = `INSERT INTO businesses (name, owner_name, plan_id, subscription_state, expires_at)
		VALUES ($1, $2, $3, 'active', $4)
		RETURNING ` + columns
	return scanBusiness(r.pool.QueryRow(ctx, q, name, ownerName, planID, expiresAt))
}

// GetByID returns a business, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	const q = `SELECT ` + columns + ` FROM businesses WHERE id = $1`
	return scanBusiness(r.pool.QueryRow(ctx, q, id))
}

// List returns all businesses, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Business, error) {
	const q = `SELECT ` + columns + ` FROM businesses ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Business
	for rows.Next() {
		var b models.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerName, &b.PlanID, &b.SubscriptionState, &b.ExpiresAt, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// SetSubscriptionState changes a business's subscription state.
func (r *Repository) SetSubscriptionState(ctx context.Context, id uuid.UUID, state models.SubscriptionState) (bool, error) {
	const q = `UPDATE businesses SET subscription_state = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, string(state))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SubscriptionState returns the subscription state of one business. An
// unknown tenant reads as expired so downstream consumers fail closed.
func (r *Repository) SubscriptionState(ctx context.Context, id uuid.UUID) (models.SubscriptionState, error) {
	const q = `SELECT subscription_state FROM businesses WHERE id = $1`
	var state models.SubscriptionState
	err := r.pool.QueryRow(ctx, q, id).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SubscriptionExpired, nil
	}
	if err != nil {
		return "", err
	}
	return state, nil
}

// Counts returns total and active business counts (global metrics).
func (r *Repository) Counts(ctx context.Context) (total, active int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE subscription_state = 'active') FROM businesses`
	err = r.pool.QueryRow(ctx, q).Scan(&total, &active)
	return total, active, err
}
