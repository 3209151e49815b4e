package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionState is the lifecycle state of a business subscription.
type SubscriptionState string

const (
	SubscriptionActive    SubscriptionState = "active"
	SubscriptionSuspended SubscriptionState = "suspended"
	SubscriptionExpired   SubscriptionState = "expired"
)

// Business represents a tenant. It owns all users except superadmins, and
// all products, sales, and notifications under it.
type Business struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	OwnerName         string            `json:"owner_name"`
	PlanID            *uuid.UUID        `json:"plan_id,omitempty"`
	SubscriptionState SubscriptionState `json:"subscription_state"`
	ExpiresAt         *time.Time        `json:"expires_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
