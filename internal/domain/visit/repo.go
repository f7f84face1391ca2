package visit

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for visits.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	SetProducts(ctx context.Context, visitID uuid.UUID, products []*Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
