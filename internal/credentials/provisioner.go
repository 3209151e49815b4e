package credentials

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/pkg/apperr"
)

// UserCreator is the slice of the user repository provisioning needs.
type UserCreator interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, username, passwordHash string, role models.Role, businessID *uuid.UUID) (*models.User, error)
}

// Provisioner creates principals with a generated one-time secret, so no
// fixed bootstrap password ever exists.
type Provisioner struct {
	users UserCreator
	store *Store
}

// NewProvisioner creates a provisioner.
func NewProvisioner(users UserCreator, store *Store) *Provisioner {
	return &Provisioner{users: users, store: store}
}

// CreateWithSecret creates the principal and returns it with the plaintext
// secret, revealed exactly once to the caller.
func (p *Provisioner) CreateWithSecret(ctx context.Context, username string, role models.Role, businessID *uuid.UUID) (*models.User, string, error) {
	existing, err := p.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w: username already taken", apperr.ErrConflict)
	}

	plaintext, err := GeneratePlaintext()
	if err != nil {
		return nil, "", err
	}
	hash, err := p.store.Hash(plaintext)
	if err != nil {
		return nil, "", err
	}
	user, err := p.users.Create(ctx, username, hash, role, businessID)
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	return user, plaintext, nil
}
