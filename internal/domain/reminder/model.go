// Package reminder manages visit reminders tied to enrollments, including
// the optional synchronous confirmation email sent on creation.
package reminder

import (
	"time"

	"github.com/google/uuid"
)

// Reminder types.
const (
	TypeVisitConfirmation = "visit_confirmation"
	TypeFollowUp          = "follow_up"
)

// Reminder is a scheduled notification tied to an enrollment. IsSent and
// SentAt are set only after a successful outbound email.
type Reminder struct {
	ID            uuid.UUID  `json:"id"`
	EnrollmentID  uuid.UUID  `json:"enrollment_id"`
	Type          string     `json:"type"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	EmailTo       string     `json:"email_to,omitempty"`
	EmailCC       string     `json:"email_cc,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	Body          string     `json:"body,omitempty"`
	IsSent        bool       `json:"is_sent"`
	SentAt        *time.Time `json:"sent_at"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// EnrollmentInfo is the slice of enrollment state reminders need: the base
// date for scheduling and the names/address used for default email content.
type EnrollmentInfo struct {
	ID            uuid.UUID
	ScheduledDate *time.Time
	CampaignName  string
	PharmacyName  string
	PharmacyEmail string
}
