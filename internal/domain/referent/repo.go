package referent

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for referents.
type Repository interface {
	Create(ctx context.Context, r *Referent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referent, error)
	Update(ctx context.Context, r *Referent) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Referent, int, error)
}
