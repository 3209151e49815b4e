package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the platform.
type Role string

const (
	// RoleSuperAdmin manages tenants and plans; never a tenant member.
	RoleSuperAdmin Role = "superadmin"
	// RoleAdmin administers exactly one business.
	RoleAdmin Role = "admin"
	// RoleSeller registers sales within its business.
	RoleSeller Role = "vendedor"
)

// User represents a platform user. The credential hash lives on this row;
// there is no separate credential table reachable without tenant context.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Role         Role       `json:"role"`
	BusinessID   *uuid.UUID `json:"business_id,omitempty"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`
	Algorithm    string     `json:"-"`
	LastResetAt  *time.Time `json:"-"`
	ResetBy      *uuid.UUID `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// UserPublic is User without credential fields for API responses.
type UserPublic struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Role       Role       `json:"role"`
	BusinessID *uuid.UUID `json:"business_id,omitempty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		BusinessID: u.BusinessID,
		Active:     u.Active,
		CreatedAt:  u.CreatedAt,
	}
}
