package product

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, category string, limit, offset int) ([]*Product, int, error)
}
