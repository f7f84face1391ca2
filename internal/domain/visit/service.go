package visit

import (
	"context"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/db"
)

type Service struct {
	repo     Repository
	txRunner db.TxRunner
}

func NewService(repo Repository, txRunner db.TxRunner) *Service {
	return &Service{repo: repo, txRunner: txRunner}
}

// Create persists a visit and its trained products in one transaction.
func (s *Service) Create(ctx context.Context, v *Visit) error {
	if err := validate(v); err != nil {
		return err
	}
	return s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, v); err != nil {
			return err
		}
		if len(v.Products) > 0 {
			return s.repo.SetProducts(ctx, v.ID, v.Products)
		}
		return nil
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Visit, int, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, 0, apperr.Validation("to precedes from")
	}
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validate(v *Visit) error {
	if v.PharmacyID == uuid.Nil {
		return apperr.Validation("pharmacy_id is required")
	}
	if v.VisitDate.IsZero() {
		return apperr.Validation("visit_date is required")
	}
	if v.DurationMinutes < 0 {
		return apperr.Validation("duration_minutes cannot be negative")
	}
	if v.QualityScore < 1 || v.QualityScore > 10 {
		return apperr.Validation("quality_score must be between 1 and 10")
	}
	if (v.Latitude == nil) != (v.Longitude == nil) {
		return apperr.Validation("latitude and longitude must be supplied together")
	}
	for _, p := range v.Products {
		if p.ProductID == uuid.Nil {
			return apperr.Validation("product_id is required on trained products")
		}
		if p.TrainedAgentsCount < 0 {
			return apperr.Validation("trained_agents_count cannot be negative")
		}
	}
	return nil
}
