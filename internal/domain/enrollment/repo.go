package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for enrollments and their audit
// trail.
type Repository interface {
	Create(ctx context.Context, e *Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	GetByPair(ctx context.Context, pharmacyID, campaignID uuid.UUID) (*Enrollment, error)
	Update(ctx context.Context, e *Enrollment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]*Enrollment, int, error)

	AddStatusChange(ctx context.Context, sc *StatusChange) error
	ListStatusChanges(ctx context.Context, enrollmentID uuid.UUID) ([]*StatusChange, error)

	CalendarEvents(ctx context.Context, campaignID uuid.UUID) ([]*CalendarEvent, error)
	ListByDate(ctx context.Context, campaignID uuid.UUID, day time.Time) ([]*CalendarEvent, error)
	MapEvents(ctx context.Context, campaignID uuid.UUID) ([]*MapEvent, error)
}
