// Package referent manages the sales representatives responsible for subsets
// of pharmacies.
package referent

import (
	"time"

	"github.com/google/uuid"
)

// Referent is a field sales representative.
type Referent struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	Zone                string    `json:"zone,omitempty"`
	Color               string    `json:"color,omitempty"`
	TargetPharmacyCount int       `json:"target_pharmacy_count"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// PharmacyCount is the number of pharmacies currently assigned to this
	// referent. Computed on read, never stored.
	PharmacyCount int `json:"pharmacy_count"`
}
