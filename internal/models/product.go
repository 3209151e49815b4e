package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is tenant-shared catalog data; code is unique per business.
type Product struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	Supplier   string    `json:"supplier"`
	CreatedAt  time.Time `json:"created_at"`
}
