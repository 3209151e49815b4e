// Package notifications records sale alerts and governs how unread ones are
// re-surfaced to a polling client a bounded number of times.
package notifications

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/apperr"
)

// Store is the ledger's persistence surface. Surface must be a single atomic
// compare-and-update: check the eligibility precondition and write the new
// count/next_eligible_at in one storage operation, returning false when the
// precondition no longer holds.
type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListDue(ctx context.Context, businessID uuid.UUID, now time.Time, max int) ([]models.Notification, error)
	Surface(ctx context.Context, businessID, id uuid.UUID, now, nextEligible time.Time, max int) (bool, error)
	MarkRead(ctx context.Context, businessID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, businessID uuid.UUID) (int64, error)
	List(ctx context.Context, businessID uuid.UUID) ([]models.Notification, error)
	CountUnread(ctx context.Context, businessID uuid.UUID) (int, error)
}

// TenantStates reports a business's subscription state.
type TenantStates interface {
	SubscriptionState(ctx context.Context, businessID uuid.UUID) (models.SubscriptionState, error)
}

// Service implements the notification lifecycle and the bounded-repeat
// delivery protocol. Eligibility is computed lazily at poll time from
// next_eligible_at and presentation_count; there is no standing timer.
type Service struct {
	store   Store
	tenants TenantStates
	max     int
	jitter  func() time.Duration
	now     func() time.Time
}

// NewService creates a notification service. Jitter bounds must already be
// validated by config.
func NewService(store Store, tenants TenantStates, max int, jitterMin, jitterMax time.Duration) *Service {
	return &Service{
		store:   store,
		tenants: tenants,
		max:     max,
		jitter: func() time.Duration {
			return jitterMin + time.Duration(rand.Int63n(int64(jitterMax-jitterMin)+1))
		},
		now: time.Now,
	}
}

// Create inserts a sale alert in its initial state: unread, zero
// presentations, eligible immediately.
func (s *Service) Create(ctx context.Context, n *models.Notification) error {
	if n.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalid)
	}
	if n.Message == "" {
		return fmt.Errorf("%w: message required", apperr.ErrInvalid)
	}
	n.Read = false
	n.PresentationCount = 0
	n.NextEligibleAt = s.now().UTC()
	return s.store.Insert(ctx, n)
}

// Poll returns the notifications due for (re-)presentation in the actor's
// tenant, oldest first, and atomically performs the surface transition for
// each returned item. Two concurrent polls never double-increment one row:
// the compare-and-update loser is simply skipped. Suspended and expired
// tenants poll empty (fail closed).
func (s *Service) Poll(ctx context.Context, actor scope.Context) ([]models.View, error) {
	if actor.BusinessID == nil {
		return nil, apperr.ErrDenied
	}
	state, err := s.tenants.SubscriptionState(ctx, *actor.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("tenant state: %w", err)
	}
	if state != models.SubscriptionActive {
		return []models.View{}, nil
	}

	now := s.now().UTC()
	due, err := s.store.ListDue(ctx, *actor.BusinessID, now, s.max)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}

	views := make([]models.View, 0, len(due))
	for i := range due {
		n := &due[i]
		ok, err := s.store.Surface(ctx, n.BusinessID, n.ID, now, now.Add(s.jitter()), s.max)
		if err != nil {
			return nil, fmt.Errorf("surface notification: %w", err)
		}
		if ok {
			views = append(views, n.ToView())
		}
	}
	return views, nil
}

// Acknowledge marks one notification read. Idempotent: acknowledging an
// already-read notification succeeds as a no-op. A notification outside the
// actor's tenant is indistinguishable from one that does not exist.
func (s *Service) Acknowledge(ctx context.Context, actor scope.Context, id uuid.UUID) error {
	if actor.BusinessID == nil {
		return apperr.ErrDenied
	}
	found, err := s.store.MarkRead(ctx, *actor.BusinessID, id)
	if err != nil {
		return fmt.Errorf("acknowledge notification: %w", err)
	}
	if !found {
		return apperr.ErrNotFound
	}
	return nil
}

// AcknowledgeAll marks every unread notification in the actor's tenant read
// and returns the count affected. Idempotent.
func (s *Service) AcknowledgeAll(ctx context.Context, actor scope.Context) (int64, error) {
	if actor.BusinessID == nil {
		return 0, apperr.ErrDenied
	}
	n, err := s.store.MarkAllRead(ctx, *actor.BusinessID)
	if err != nil {
		return 0, fmt.Errorf("acknowledge all: %w", err)
	}
	return n, nil
}

// List returns every notification in the actor's tenant, newest first, with
// the unread badge count. Retired notifications (count exhausted, unread)
// stay listed until acknowledged.
func (s *Service) List(ctx context.Context, actor scope.Context) ([]models.Notification, int, error) {
	if actor.BusinessID == nil {
		return nil, 0, apperr.ErrDenied
	}
	list, err := s.store.List(ctx, *actor.BusinessID)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.CountUnread(ctx, *actor.BusinessID)
	if err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}
	return list, unread, nil
}
