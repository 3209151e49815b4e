package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autostock/backend/internal/models"
)

// Repository handles notification persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, business_id, seller_id, product_id, quantity, message, read, presentation_count, next_eligible_at, created_at`

// Insert writes a new notification in its initial state.
func (r *Repository) Insert(ctx context.Context, n *models.Notification) error {
	const q = `INSERT INTO notifications (id, business_id, seller_id, product_id, quantity, message, read, presentation_count, next_eligible_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, FALSE, 0, $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, n.BusinessID, n.SellerID, n.ProductID, n.Quantity, n.Message, n.NextEligibleAt).
		Scan(&n.ID, &n.CreatedAt)
}

// ListDue returns the notifications whose surface precondition currently
// holds, oldest created_at first with id as the stable tiebreak.
func (r *Repository) ListDue(ctx context.Context, businessID uuid.UUID, now time.Time, max int) ([]models.Notification, error) {
	const q = `SELECT ` + columns + ` FROM notifications
		WHERE business_id = $1 AND read = FALSE AND presentation_count < $3 AND next_eligible_at <= $2
		ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, q, businessID, now, max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

// Surface applies the surface transition as one conditional update. The
// WHERE clause re-checks the precondition so concurrent polls cannot
// double-increment; a zero row count means the race was lost.
func (r *Repository) Surface(ctx context.Context, businessID, id uuid.UUID, now, nextEligible time.Time, max int) (bool, error) {
	const q = `UPDATE notifications
		SET presentation_count = presentation_count + 1, next_eligible_at = $3
		WHERE id = $1 AND business_id = $2 AND read = FALSE AND presentation_count < $5 AND next_eligible_at <= $4`
	tag, err := r.pool.Exec(ctx, q, id, businessID, nextEligible, now, max)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkRead sets read unconditionally; returns whether a row existed in this
// tenant. Re-marking a read row still reports found (idempotent no-op).
func (r *Repository) MarkRead(ctx context.Context, businessID, id uuid.UUID) (bool, error) {
	const q = `UPDATE notifications SET read = TRUE WHERE id = $1 AND business_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, businessID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkAllRead sets read on every unread row in the tenant.
func (r *Repository) MarkAllRead(ctx context.Context, businessID uuid.UUID) (int64, error) {
	const q = `UPDATE notifications SET read = TRUE WHERE business_id = $1 AND read = FALSE`
	tag, err := r.pool.Exec(ctx, q, businessID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// List returns all notifications in the tenant, newest first.
func (r *Repository) List(ctx context.Context, businessID uuid.UUID) ([]models.Notification, error) {
	const q = `SELECT ` + columns + ` FROM notifications WHERE business_id = $1 ORDER BY created_at DESC, id`
	rows, err := r.pool.Query(ctx, q, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

// CountUnread returns the badge count, independent of surfaced count.
func (r *Repository) CountUnread(ctx context.Context, businessID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE business_id = $1 AND read = FALSE`
	var n int
	err := r.pool.QueryRow(ctx, q, businessID).Scan(&n)
	return n, err
}

func scanAll(rows pgx.Rows) ([]models.Notification, error) {
	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.BusinessID, &n.SellerID, &n.ProductID, &n.Quantity, &n.Message,
			&n.Read, &n.PresentationCount, &n.NextEligibleAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
