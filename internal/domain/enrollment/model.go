// Package enrollment manages the association between a pharmacy and a
// campaign: its lifecycle status, the append-only audit trail of every
// transition, and the calendar/map projections built on top of it.
package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

// Status is the lifecycle state of an enrollment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusDone      Status = "done"
	StatusProblem   Status = "problem"
	StatusCancelled Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusScheduled: true,
	StatusDone:      true,
	StatusProblem:   true,
	StatusCancelled: true,
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", apperr.Validation("invalid status: %s", s)
	}
	return st, nil
}

// Fields are the status-dependent columns of an enrollment. Which of them
// are set is governed entirely by Apply.
type Fields struct {
	ScheduledDate *time.Time `json:"scheduled_date"`
	DoneDate      *time.Time `json:"done_date"`
	CompletedDate *time.Time `json:"completed_date"`
	Comment       *string    `json:"comment"`
}

// Enrollment links one pharmacy to one campaign. Exactly one row exists per
// (pharmacy, campaign) pair.
type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Status     Status    `json:"status"`
	Fields
	EnrollmentDate time.Time `json:"enrollment_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// PharmacyName is joined on read for list projections.
	PharmacyName string `json:"pharmacy_name,omitempty"`
}

// StatusChange is one immutable audit row. Created once per transition,
// deleted only by enrollment cascade.
type StatusChange struct {
	ID           uuid.UUID `json:"id"`
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	OldStatus    Status    `json:"old_status"`
	NewStatus    Status    `json:"new_status"`
	Reason       *string   `json:"reason"`
	Actor        string    `json:"actor,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CalendarEvent is the projection served to the campaign calendar: one event
// per enrollment that carries a relevant date.
type CalendarEvent struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	PharmacyName string    `json:"pharmacy_name"`
	Date         time.Time `json:"date"`
	Status       Status    `json:"status"`
	Comment      *string   `json:"comment"`
}

// MapEvent is the projection served to the campaign map view.
type MapEvent struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	PharmacyName string    `json:"pharmacy_name"`
	Status       Status    `json:"status"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}
