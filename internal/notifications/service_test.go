package notifications

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/apperr"
)

type memStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Notification
	now  func() time.Time
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uuid.UUID]*models.Notification), now: func() time.Time { return time.Now().UTC() }}
}

func (m *memStore) Insert(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}
	cp := *n
	m.rows[n.ID] = &cp
	return nil
}

func (m *memStore) ListDue(_ context.Context, businessID uuid.UUID, now time.Time, max int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []models.Notification
	for _, n := range m.rows {
		if n.BusinessID == businessID && !n.Read && n.PresentationCount < max && !n.NextEligibleAt.After(now) {
			due = append(due, *n)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].CreatedAt.Equal(due[j].CreatedAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].ID.String() < due[j].ID.String()
	})
	return due, nil
}

func (m *memStore) Surface(_ context.Context, businessID, id uuid.UUID, now, nextEligible time.Time, max int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok || n.BusinessID != businessID || n.Read || n.PresentationCount >= max || n.NextEligibleAt.After(now) {
		return false, nil
	}
	n.PresentationCount++
	n.NextEligibleAt = nextEligible
	return true, nil
}

func (m *memStore) MarkRead(_ context.Context, businessID, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.rows[id]
	if !ok || n.BusinessID != businessID {
		return false, nil
	}
	n.Read = true
	return true, nil
}

func (m *memStore) MarkAllRead(_ context.Context, businessID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, n := range m.rows {
		if n.BusinessID == businessID && !n.Read {
			n.Read = true
			affected++
		}
	}
	return affected, nil
}

func (m *memStore) List(_ context.Context, businessID uuid.UUID) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.Notification
	for _, n := range m.rows {
		if n.BusinessID == businessID {
			list = append(list, *n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (m *memStore) CountUnread(_ context.Context, businessID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int
	for _, n := range m.rows {
		if n.BusinessID == businessID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memStore) get(id uuid.UUID) models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

type memTenants struct {
	states map[uuid.UUID]models.SubscriptionState
}

func (m *memTenants) SubscriptionState(_ context.Context, id uuid.UUID) (models.SubscriptionState, error) {
	state, ok := m.states[id]
	if !ok {
		return models.SubscriptionExpired, nil
	}
	return state, nil
}

type fixture struct {
	svc     *Service
	store   *memStore
	tenants *memTenants
	biz     uuid.UUID
	actor   scope.Context
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		biz:   uuid.New(),
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.tenants = &memTenants{states: map[uuid.UUID]models.SubscriptionState{f.biz: models.SubscriptionActive}}
	f.store.now = func() time.Time { return f.clock }
	f.svc = NewService(f.store, f.tenants, models.MaxPresentations, 10*time.Second, 20*time.Second)
	f.svc.now = func() time.Time { return f.clock }
	admin := scope.Principal{ID: uuid.New(), Role: models.RoleAdmin, BusinessID: &f.biz, Active: true}
	f.actor = scope.Context{Principal: admin, BusinessID: &f.biz}
	return f
}

func (f *fixture) create(t *testing.T, msg string) uuid.UUID {
	t.Helper()
	n := &models.Notification{BusinessID: f.biz, SellerID: uuid.New(), ProductID: uuid.New(), Quantity: 1, Message: msg}
	require.NoError(t, f.svc.Create(context.Background(), n))
	return n.ID
}

func TestCreateInitialState(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "ana vendió 2 x Filtro de aceite")

	got := f.store.get(id)
	assert.False(t, got.Read)
	assert.Equal(t, 0, got.PresentationCount)
	assert.Equal(t, f.clock, got.NextEligibleAt)
}

func TestCreateRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Create(context.Background(), &models.Notification{BusinessID: f.biz, Quantity: 0, Message: "x"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	err = f.svc.Create(context.Background(), &models.Notification{BusinessID: f.biz, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestPollSurfacesAndSchedulesJitter(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "venta")

	views, err := f.svc.Poll(context.Background(), f.actor)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, id, views[0].ID)

	got := f.store.get(id)
	assert.Equal(t, 1, got.PresentationCount)
	delay := got.NextEligibleAt.Sub(f.clock)
	assert.GreaterOrEqual(t, delay, 10*time.Second)
	assert.LessOrEqual(t, delay, 20*time.Second)
}

func TestPollNotEligibleBeforeJitterElapses(t *testing.T) {
	f := newFixture(t)
	f.create(t, "venta")

	_, err := f.svc.Poll(context.Background(), f.actor)
	require.NoError(t, err)

	// Second poll lands inside the jitter window.
	f.clock = f.clock.Add(5 * time.Second)
	views, err := f.svc.Poll(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestPollThreePresentationsThenSilent(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "venta")

	for i := 1; i <= models.MaxPresentations; i++ {
		views, err := f.svc.Poll(context.Background(), f.actor)
		require.NoError(t, err)
		require.Len(t, views, 1, "presentation %d", i)
		assert.Equal(t, i, f.store.get(id).PresentationCount)
		f.clock = f.clock.Add(time.Minute)
	}

	// Budget exhausted: still unread, but never surfaced again.
	for i := 0; i < 3; i++ {
		views, err := f.svc.Poll(context.Background(), f.actor)
		require.NoError(t, err)
		assert.Empty(t, views)
		f.clock = f.clock.Add(time.Minute)
	}
	got := f.store.get(id)
	assert.Equal(t, models.MaxPresentations, got.PresentationCount)
	assert.False(t, got.Read)
}

func TestAcknowledgeFreezesNotification(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "venta")

	_, err := f.svc.Poll(context.Background(), f.actor)
	require.NoError(t, err)
	require.NoError(t, f.svc.Acknowledge(context.Background(), f.actor, id))

	f.clock = f.clock.Add(time.Minute)
	views, err := f.svc.Poll(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Equal(t, 1, f.store.get(id).PresentationCount)

	// Idempotent.
	require.NoError(t, f.svc.Acknowledge(context.Background(), f.actor, id))
}

func TestAcknowledgeUnknownAndCrossTenant(t *testing.T) {
	f := newFixture(t)
	otherBiz := uuid.New()
	foreign := &models.Notification{BusinessID: otherBiz, SellerID: uuid.New(), ProductID: uuid.New(), Quantity: 1, Message: "ajena"}
	require.NoError(t, f.store.Insert(context.Background(), foreign))

	err := f.svc.Acknowledge(context.Background(), f.actor, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// A notification of another tenant is indistinguishable from a missing one.
	err = f.svc.Acknowledge(context.Background(), f.actor, foreign.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, f.store.get(foreign.ID).Read)
}

func TestAcknowledgeAll(t *testing.T) {
	f := newFixture(t)
	f.create(t, "uno")
	f.create(t, "dos")
	f.create(t, "tres")

	affected, err := f.svc.AcknowledgeAll(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	affected, err = f.svc.AcknowledgeAll(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestPollOrderingOldestFirst(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, "primera")
	f.clock = f.clock.Add(time.Second)
	second := f.create(t, "segunda")

	views, err := f.svc.Poll(context.Background(), f.actor)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, first, views[0].ID)
	assert.Equal(t, second, views[1].ID)
}

func TestPollFailsClosedForInactiveTenant(t *testing.T) {
	for _, state := range []models.SubscriptionState{models.SubscriptionSuspended, models.SubscriptionExpired} {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture(t)
			id := f.create(t, "venta")
			f.tenants.states[f.biz] = state

			views, err := f.svc.Poll(context.Background(), f.actor)
			require.NoError(t, err)
			assert.Empty(t, views)
			assert.Equal(t, 0, f.store.get(id).PresentationCount, "inactive tenant polls must not consume budget")
		})
	}
}

func TestPollDeniedWithoutTenant(t *testing.T) {
	f := newFixture(t)
	global := scope.Context{Principal: scope.Principal{ID: uuid.New(), Role: models.RoleSuperAdmin, Active: true}}
	_, err := f.svc.Poll(context.Background(), global)
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestConcurrentPollsNoDoubleIncrement(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, "venta")

	var wg sync.WaitGroup
	results := make([][]models.View, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			views, err := f.svc.Poll(context.Background(), f.actor)
			assert.NoError(t, err)
			results[i] = views
		}(i)
	}
	wg.Wait()

	var delivered int
	for _, views := range results {
		delivered += len(views)
	}
	assert.Equal(t, 1, delivered, "exactly one poll wins the surface transition")
	assert.Equal(t, 1, f.store.get(id).PresentationCount)
}

func TestListNewestFirstWithBadge(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, "primera")
	f.clock = f.clock.Add(time.Second)
	second := f.create(t, "segunda")
	require.NoError(t, f.svc.Acknowledge(context.Background(), f.actor, first))

	list, unread, err := f.svc.List(context.Background(), f.actor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
	assert.Equal(t, 1, unread)
}
