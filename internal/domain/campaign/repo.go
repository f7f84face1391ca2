package campaign

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for campaigns, their product
// associations, and initial pharmacy enrollments.
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, limit, offset int) ([]*Campaign, int, error)

	SetProducts(ctx context.Context, campaignID uuid.UUID, productIDs []uuid.UUID) error
	EnrollPharmacies(ctx context.Context, campaignID uuid.UUID, pharmacyIDs []uuid.UUID) error
}
