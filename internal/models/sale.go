package models

import (
	"time"

	"github.com/google/uuid"
)

// Sale records one sale by a seller within a business.
type Sale struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	ProductID  uuid.UUID `json:"product_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	Quantity   int       `json:"quantity"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}
