// Package pharmacy manages the pharmacy directory: locations, contact people,
// counter agents, and referent assignment. Pharmacies are archived via the
// active flag, never hard-deleted.
package pharmacy

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Valid pharmacy types.
const (
	TypePharmacie     = "pharmacie"
	TypeParapharmacie = "parapharmacie"
	TypeGrandeSurface = "grande_surface"
)

var validTypes = map[string]bool{
	TypePharmacie:     true,
	TypeParapharmacie: true,
	TypeGrandeSurface: true,
}

// Pharmacy is a point of sale visited by field representatives.
type Pharmacy struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Address    string     `json:"address,omitempty"`
	City       string     `json:"city,omitempty"`
	PostalCode string     `json:"postal_code,omitempty"`
	Region     string     `json:"region,omitempty"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	ReferentID *uuid.UUID `json:"referent_id"`
	Active     bool       `json:"active"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FullAddress joins the address parts for geocoding.
func (p *Pharmacy) FullAddress() string {
	parts := make([]string, 0, 3)
	if p.Address != "" {
		parts = append(parts, p.Address)
	}
	if p.PostalCode != "" || p.City != "" {
		parts = append(parts, strings.TrimSpace(p.PostalCode+" "+p.City))
	}
	return strings.Join(parts, ", ")
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p *Pharmacy) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Contact is a named contact person at a pharmacy.
type Contact struct {
	ID         uuid.UUID `json:"id"`
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// Agent is a counter agent trained during visits.
type Agent struct {
	ID         uuid.UUID `json:"id"`
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	Name       string    `json:"name"`
	Position   string    `json:"position,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// MapPoint is the projection served to the map view.
type MapPoint struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// Filter narrows pharmacy listings.
type Filter struct {
	Search     string
	Region     string
	ReferentID *uuid.UUID
	ActiveOnly bool
}
