package campaign

import (
	"context"
	"strings"

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

// CreateInput carries a new campaign plus its initial product and pharmacy
// sets.
type CreateInput struct {
	Campaign    *Campaign
	ProductIDs  []uuid.UUID
	PharmacyIDs []uuid.UUID
}

// Create persists the campaign, its product associations, and a pending
// enrollment for each initial pharmacy, all in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) error {
	c := in.Campaign
	if err := validate(c); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}

	return s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		if len(in.ProductIDs) > 0 {
			if err := s.repo.SetProducts(ctx, c.ID, in.ProductIDs); err != nil {
				return err
			}
			c.ProductIDs = in.ProductIDs
		}
		if len(in.PharmacyIDs) > 0 {
			if err := s.repo.EnrollPharmacies(ctx, c.ID, in.PharmacyIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Campaign, productIDs []uuid.UUID) error {
	if err := validate(c); err != nil {
		return err
	}
	if !validStatuses[c.Status] {
		return apperr.Validation("invalid status: %s", c.Status)
	}

	return s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		if productIDs != nil {
			if err := s.repo.SetProducts(ctx, c.ID, productIDs); err != nil {
				return err
			}
			c.ProductIDs = productIDs
		}
		return nil
	})
}

// Delete removes a campaign and, through cascade, its enrollments with their
// status changes and reminders.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*Campaign, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, apperr.Validation("invalid status: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

func validate(c *Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("name is required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return apperr.Validation("start_date and end_date are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return apperr.Validation("end_date precedes start_date")
	}
	return nil
}
