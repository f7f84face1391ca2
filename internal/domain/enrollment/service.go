package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/db"
)

type Service struct {
	repo     Repository
	txRunner db.TxRunner
	now      func() time.Time
}

func NewService(repo Repository, txRunner db.TxRunner) *Service {
	return &Service{repo: repo, txRunner: txRunner, now: time.Now}
}

// TransitionRequest identifies the enrollment either explicitly by ID or by
// pharmacy (upsert semantics), always within a campaign context.
type TransitionRequest struct {
	EnrollmentID *uuid.UUID
	PharmacyID   *uuid.UUID
	CampaignID   uuid.UUID
	Input        TransitionInput
	Actor        string
}

// TransitionResult reports a completed transition.
type TransitionResult struct {
	Enrollment *Enrollment `json:"enrollment"`
	OldStatus  Status      `json:"old_status"`
	NewStatus  Status      `json:"new_status"`
}

// Transition applies a status change. The enrollment update and its audit row
// are committed together or not at all.
//
// Resolution: an explicit enrollment ID must exist (NotFound) and must belong
// to the request's campaign (Unauthorized). A pharmacy ID upserts: a missing
// enrollment is created as pending before the transition is applied.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	if req.EnrollmentID == nil && req.PharmacyID == nil {
		return nil, apperr.Validation("enrollment_id or pharmacy_id is required")
	}

	var result *TransitionResult
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		enr, err := s.resolve(ctx, req)
		if err != nil {
			return err
		}

		oldStatus := enr.Status
		fields, err := Apply(oldStatus, enr.Fields, req.Input, s.now())
		if err != nil {
			return err
		}

		enr.Status = req.Input.Target
		enr.Fields = fields
		if err := s.repo.Update(ctx, enr); err != nil {
			return err
		}

		sc := &StatusChange{
			EnrollmentID: enr.ID,
			OldStatus:    oldStatus,
			NewStatus:    enr.Status,
			Actor:        req.Actor,
		}
		// Reason is recorded only for problem/cancelled targets.
		if req.Input.Target == StatusProblem || req.Input.Target == StatusCancelled {
			reason := req.Input.Comment
			sc.Reason = &reason
		}
		if err := s.repo.AddStatusChange(ctx, sc); err != nil {
			return err
		}

		result = &TransitionResult{Enrollment: enr, OldStatus: oldStatus, NewStatus: enr.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, req TransitionRequest) (*Enrollment, error) {
	if req.EnrollmentID != nil {
		enr, err := s.repo.GetByID(ctx, *req.EnrollmentID)
		if err != nil {
			return nil, err
		}
		if enr.CampaignID != req.CampaignID {
			return nil, apperr.Unauthorized("enrollment %s does not belong to campaign %s", enr.ID, req.CampaignID)
		}
		return enr, nil
	}

	enr, err := s.repo.GetByPair(ctx, *req.PharmacyID, req.CampaignID)
	if apperr.IsNotFound(err) {
		enr = &Enrollment{
			PharmacyID: *req.PharmacyID,
			CampaignID: req.CampaignID,
			Status:     StatusPending,
		}
		if err := s.repo.Create(ctx, enr); err != nil {
			return nil, err
		}
		return enr, nil
	}
	return enr, err
}

// AddPharmacy enrolls a pharmacy as pending. A duplicate pair is rejected by
// the unique constraint.
func (s *Service) AddPharmacy(ctx context.Context, campaignID, pharmacyID uuid.UUID) (*Enrollment, error) {
	enr := &Enrollment{
		PharmacyID: pharmacyID,
		CampaignID: campaignID,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, enr); err != nil {
		return nil, err
	}
	return enr, nil
}

// RemovePharmacy deletes an enrollment. Its status changes and reminders go
// with it via cascade.
func (s *Service) RemovePharmacy(ctx context.Context, campaignID, enrollmentID uuid.UUID) error {
	enr, err := s.repo.GetByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if enr.CampaignID != campaignID {
		return apperr.Unauthorized("enrollment %s does not belong to campaign %s", enrollmentID, campaignID)
	}
	return s.repo.Delete(ctx, enrollmentID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	return s.repo.ListByCampaign(ctx, campaignID, limit, offset)
}

// StatusLog returns the audit trail for an enrollment, newest first.
func (s *Service) StatusLog(ctx context.Context, enrollmentID uuid.UUID) ([]*StatusChange, error) {
	if _, err := s.repo.GetByID(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return s.repo.ListStatusChanges(ctx, enrollmentID)
}

func (s *Service) Calendar(ctx context.Context, campaignID uuid.UUID) ([]*CalendarEvent, error) {
	return s.repo.CalendarEvents(ctx, campaignID)
}

func (s *Service) ByDate(ctx context.Context, campaignID uuid.UUID, day time.Time) ([]*CalendarEvent, error) {
	return s.repo.ListByDate(ctx, campaignID, day)
}

func (s *Service) MapFeed(ctx context.Context, campaignID uuid.UUID) ([]*MapEvent, error) {
	return s.repo.MapEvents(ctx, campaignID)
}
