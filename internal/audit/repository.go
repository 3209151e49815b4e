package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists drained audit events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one decision row. Idempotent on event ID so a retried event
// never duplicates.
func (r *Repository) Insert(ctx context.Context, ev *Event) error {
	const q = `INSERT INTO audit_log (id, principal_id, role, action, target_business, allowed, reason, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q,
		ev.ID, ev.Decision.PrincipalID, string(ev.Decision.Role), string(ev.Decision.Action),
		ev.Decision.TargetBusiness, ev.Decision.Allowed, ev.Decision.Reason, ev.Decision.DecidedAt)
	return err
}
