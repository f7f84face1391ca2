package product

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name is required")
	}
	p.Active = true
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name is required")
	}
	return s.repo.Update(ctx, p)
}

// Archive deactivates a product. Existing campaign and visit associations are
// kept for history.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Active = false
	return s.repo.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, activeOnly bool, category string, limit, offset int) ([]*Product, int, error) {
	return s.repo.List(ctx, activeOnly, category, limit, offset)
}
