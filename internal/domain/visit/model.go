// Package visit records completed or planned field visits at pharmacies,
// including the products trained during each visit.
package visit

import (
	"time"

	"github.com/google/uuid"
)

// Visit is a single field-rep intervention at a pharmacy.
type Visit struct {
	ID              uuid.UUID  `json:"id"`
	PharmacyID      uuid.UUID  `json:"pharmacy_id"`
	PharmacyName    string     `json:"pharmacy_name,omitempty"`
	VisitDate       time.Time  `json:"visit_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Objective       string     `json:"objective,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	QualityScore    int        `json:"quality_score"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Completed       bool       `json:"completed"`
	CreatedBy       string     `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Products        []*Product `json:"products,omitempty"`
}

// Product is a product trained during a visit.
type Product struct {
	ProductID          uuid.UUID `json:"product_id"`
	ProductName        string    `json:"product_name,omitempty"`
	TrainedAgentsCount int       `json:"trained_agents_count"`
}

// Filter narrows visit listings.
type Filter struct {
	PharmacyID *uuid.UUID
	From       *time.Time
	To         *time.Time
}
