// Package product manages the dermo-cosmetic product catalog promoted during
// campaigns and training visits.
package product

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	SalesPitch  string    `json:"sales_pitch,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
