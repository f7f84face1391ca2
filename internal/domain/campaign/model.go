// Package campaign manages promotional campaigns: date ranges, product
// associations, and the initial enrollment of pharmacies.
package campaign

import (
	"time"

	"github.com/google/uuid"
)

// Campaign statuses.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusDraft:     true,
	StatusActive:    true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Campaign is a promotional push over an inclusive date range.
type Campaign struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ProductIDs lists the associated products. Loaded on read.
	ProductIDs []uuid.UUID `json:"product_ids,omitempty"`

	// Progress is done enrollments over total enrollments, as a percentage.
	// Computed on read.
	Progress float64 `json:"progress"`
}

// IsActiveOn reports whether the campaign is active and its inclusive date
// range contains the given day.
func (c *Campaign) IsActiveOn(day time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	d := day.Truncate(24 * time.Hour)
	start := c.StartDate.Truncate(24 * time.Hour)
	end := c.EndDate.Truncate(24 * time.Hour)
	return !d.Before(start) && !d.After(end)
}
