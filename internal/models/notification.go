package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxPresentations bounds how many times an unread notification may be
// re-surfaced before it goes silent.
const MaxPresentations = 3

// Notification is a sale alert addressed to a business's admin.
//
// Lifecycle: Created (count 0) -> Surfaced (count 1..3) -> Read (terminal).
// presentation_count never decreases and never exceeds MaxPresentations;
// once Read is set, count and NextEligibleAt are frozen. Rows are never
// deleted individually; "mark all read" clears them in bulk within one tenant.
type Notification struct {
	ID                uuid.UUID `json:"id"`
	BusinessID        uuid.UUID `json:"business_id"`
	SellerID          uuid.UUID `json:"seller_id"`
	ProductID         uuid.UUID `json:"product_id"`
	Quantity          int       `json:"quantity"`
	Message           string    `json:"message"`
	Read              bool      `json:"read"`
	PresentationCount int       `json:"presentation_count"`
	NextEligibleAt    time.Time `json:"next_eligible_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// View is the poll-facing shape of a notification.
type View struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// ToView converts a Notification to its poll representation.
func (n *Notification) ToView() View {
	return View{ID: n.ID, Message: n.Message, CreatedAt: n.CreatedAt, Read: n.Read}
}
