package referent

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

func (s *Service) Create(ctx context.Context, ref *Referent) error {
	if err := validate(ref); err != nil {
		return err
	}
	ref.Active = true
	return s.repo.Create(ctx, ref)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Referent, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, ref *Referent) error {
	if err := validate(ref); err != nil {
		return err
	}
	return s.repo.Update(ctx, ref)
}

// Archive deactivates a referent without touching its pharmacy assignments.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	ref, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ref.Active = false
	return s.repo.Update(ctx, ref)
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Referent, int, error) {
	return s.repo.List(ctx, activeOnly, limit, offset)
}

func validate(ref *Referent) error {
	if strings.TrimSpace(ref.Name) == "" {
		return apperr.Validation("name is required")
	}
	if ref.Email != "" && !strings.Contains(ref.Email, "@") {
		return apperr.Validation("invalid email: %s", ref.Email)
	}
	if ref.TargetPharmacyCount < 0 {
		return apperr.Validation("target_pharmacy_count cannot be negative")
	}
	return nil
}
