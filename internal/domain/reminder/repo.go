package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for reminders.
type Repository interface {
	Create(ctx context.Context, r *Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error)
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]*Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

// EnrollmentSource resolves the enrollment context a reminder is created
// against.
type EnrollmentSource interface {
	EnrollmentInfo(ctx context.Context, enrollmentID uuid.UUID) (*EnrollmentInfo, error)
}
