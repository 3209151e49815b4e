// Package credentials generates, hashes, verifies, and resets login secrets.
// Plaintext reset values exist only in the response to the resetting caller;
// they are never persisted or logged.
package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/internal/scope"
	"github.com/autostock/backend/pkg/apperr"
)

// Record is the credential-bearing view of a principal row.
type Record struct {
	PrincipalID uuid.UUID
	Role        models.Role
	BusinessID  *uuid.UUID
	Active      bool
	LastResetAt *time.Time
}

// Directory is the persistence surface the store needs. Lookup and SecretHash
// return zero values, not errors, when the principal is absent.
type Directory interface {
	Lookup(ctx context.Context, id uuid.UUID) (*Record, error)
	SecretHash(ctx context.Context, id uuid.UUID) (string, error)
	// ReplaceSecret writes the new hash only if last_reset_at still equals
	// prevReset; returns false when a concurrent reset won.
	ReplaceSecret(ctx context.Context, id uuid.UUID, hash string, prevReset *time.Time, by uuid.UUID, at time.Time) (bool, error)
}

// Store resets and verifies login secrets.
type Store struct {
	dir  Directory
	cost int
	now  func() time.Time
}

// NewStore creates a credential store. cost <= 0 selects bcrypt.DefaultCost.
func NewStore(dir Directory, cost int) *Store {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Store{dir: dir, cost: cost, now: time.Now}
}

// dummyHash absorbs verification attempts against unknown principals so the
// caller cannot tell an absent account from a wrong password.
var dummyHash []byte

func init() {
	dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
}

// resetTarget maps the actor's role to the single tier it may reset.
func resetTarget(actor models.Role) (models.Role, bool) {
	switch actor {
	case models.RoleSuperAdmin:
		return models.RoleAdmin, true
	case models.RoleAdmin:
		return models.RoleSeller, true
	default:
		return "", false
	}
}

// Reset generates a secret for the target principal, persists its hash, and
// returns the plaintext exactly once. The actor must already hold an
// authorized context for the reset action; this re-checks the tier and
// tenant rules against the target row. Concurrent resets on one row are
// serialized by a compare-and-update on last_reset_at; losers get ErrConflict.
func (s *Store) Reset(ctx context.Context, actor scope.Context, targetID uuid.UUID) (string, error) {
	wantRole, ok := resetTarget(actor.Principal.Role)
	if !ok {
		return "", apperr.ErrDenied
	}

	rec, err := s.dir.Lookup(ctx, targetID)
	if err != nil {
		return "", fmt.Errorf("lookup reset target: %w", err)
	}
	if rec == nil {
		return "", apperr.ErrNotFound
	}
	if rec.Role != wantRole {
		return "", apperr.ErrDenied
	}
	if actor.Principal.Role == models.RoleAdmin {
		if rec.BusinessID == nil || actor.Principal.BusinessID == nil || *rec.BusinessID != *actor.Principal.BusinessID {
			return "", apperr.ErrDenied
		}
	}
	if !rec.Active {
		return "", fmt.Errorf("%w: target is inactive", apperr.ErrConflict)
	}

	plaintext, err := GeneratePlaintext()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}

	won, err := s.dir.ReplaceSecret(ctx, targetID, string(hash), rec.LastResetAt, actor.Principal.ID, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("persist secret: %w", err)
	}
	if !won {
		return "", fmt.Errorf("%w: concurrent reset in progress", apperr.ErrConflict)
	}
	return plaintext, nil
}

// Verify compares a candidate secret against the stored hash. It returns
// false uniformly for unknown principals, burning a comparison against a
// dummy hash so account existence is not observable.
func (s *Store) Verify(ctx context.Context, principalID uuid.UUID, candidate string) bool {
	hash, err := s.dir.SecretHash(ctx, principalID)
	if err != nil || hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(candidate))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// Hash returns the bcrypt hash of a plaintext, for principal creation paths.
func (s *Store) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}
