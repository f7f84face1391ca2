package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

// -- Mock Repository --

type pairKey struct {
	pharmacy, campaign uuid.UUID
}

type mockRepo struct {
	enrollments map[uuid.UUID]*Enrollment
	pairs       map[pairKey]uuid.UUID
	changes     []*StatusChange
	failUpdate  bool
	failLog     bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		enrollments: make(map[uuid.UUID]*Enrollment),
		pairs:       make(map[pairKey]uuid.UUID),
	}
}

func (m *mockRepo) Create(_ context.Context, e *Enrollment) error {
	key := pairKey{e.PharmacyID, e.CampaignID}
	if _, exists := m.pairs[key]; exists {
		return apperr.Validation("pharmacy %s is already enrolled in campaign %s", e.PharmacyID, e.CampaignID)
	}
	e.ID = uuid.New()
	if e.Status == "" {
		e.Status = StatusPending
	}
	e.EnrollmentDate = time.Now()
	cp := *e
	m.enrollments[e.ID] = &cp
	m.pairs[key] = e.ID
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, apperr.NotFound("enrollment %s not found", id)
	}
	cp := *e
	return &cp, nil
}

func (m *mockRepo) GetByPair(_ context.Context, pharmacyID, campaignID uuid.UUID) (*Enrollment, error) {
	id, ok := m.pairs[pairKey{pharmacyID, campaignID}]
	if !ok {
		return nil, apperr.NotFound("enrollment for pharmacy %s in campaign %s not found", pharmacyID, campaignID)
	}
	cp := *m.enrollments[id]
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, e *Enrollment) error {
	if m.failUpdate {
		return apperr.Persistence("update enrollment", nil)
	}
	if _, ok := m.enrollments[e.ID]; !ok {
		return apperr.NotFound("enrollment %s not found", e.ID)
	}
	cp := *e
	m.enrollments[e.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	e, ok := m.enrollments[id]
	if !ok {
		return apperr.NotFound("enrollment %s not found", id)
	}
	delete(m.pairs, pairKey{e.PharmacyID, e.CampaignID})
	delete(m.enrollments, id)
	return nil
}

func (m *mockRepo) ListByCampaign(_ context.Context, campaignID uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	var result []*Enrollment
	for _, e := range m.enrollments {
		if e.CampaignID == campaignID {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) AddStatusChange(_ context.Context, sc *StatusChange) error {
	if m.failLog {
		return apperr.Persistence("insert status change", nil)
	}
	sc.ID = uuid.New()
	sc.CreatedAt = time.Now()
	m.changes = append(m.changes, sc)
	return nil
}

func (m *mockRepo) ListStatusChanges(_ context.Context, enrollmentID uuid.UUID) ([]*StatusChange, error) {
	var result []*StatusChange
	for i := len(m.changes) - 1; i >= 0; i-- {
		if m.changes[i].EnrollmentID == enrollmentID {
			result = append(result, m.changes[i])
		}
	}
	return result, nil
}

func (m *mockRepo) CalendarEvents(_ context.Context, campaignID uuid.UUID) ([]*CalendarEvent, error) {
	return nil, nil
}

func (m *mockRepo) ListByDate(_ context.Context, campaignID uuid.UUID, day time.Time) ([]*CalendarEvent, error) {
	return nil, nil
}

func (m *mockRepo) MapEvents(_ context.Context, campaignID uuid.UUID) ([]*MapEvent, error) {
	return nil, nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx{})
	svc.now = func() time.Time { return now }
	return svc, repo
}

func seedEnrollment(t *testing.T, repo *mockRepo, campaignID uuid.UUID, status Status) *Enrollment {
	t.Helper()
	e := &Enrollment{PharmacyID: uuid.New(), CampaignID: campaignID, Status: status}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return e
}

func TestTransition_ByID(t *testing.T) {
	svc, repo := newTestService()
	campaignID := uuid.New()
	enr := seedEnrollment(t, repo, campaignID, StatusPending)

	when := now.AddDate(0, 0, 5)
	result, err := svc.Transition(context.Background(), TransitionRequest{
		EnrollmentID: &enr.ID,
		CampaignID:   campaignID,
		Input:        TransitionInput{Target: StatusScheduled, ScheduledDate: &when},
		Actor:        "user-1",
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if result.OldStatus != StatusPending || result.NewStatus != StatusScheduled {
		t.Errorf("unexpected statuses: %s -> %s", result.OldStatus, result.NewStatus)
	}

	stored := repo.enrollments[enr.ID]
	if stored.Status != StatusScheduled || stored.ScheduledDate == nil {
		t.Errorf("unexpected stored state: %+v", stored)
	}
	if len(repo.changes) != 1 {
		t.Fatalf("expected 1 status change, got %d", len(repo.changes))
	}
	sc := repo.changes[0]
	if sc.OldStatus != StatusPending || sc.NewStatus != StatusScheduled || sc.Actor != "user-1" {
		t.Errorf("unexpected status change: %+v", sc)
	}
	if sc.Reason != nil {
		t.Error("reason must only be recorded for problem/cancelled")
	}
}

func TestTransition_WrongCampaign(t *testing.T) {
	svc, repo := newTestService()
	enr := seedEnrollment(t, repo, uuid.New(), StatusPending)

	when := now.AddDate(0, 0, 5)
	_, err := svc.Transition(context.Background(), TransitionRequest{
		EnrollmentID: &enr.ID,
		CampaignID:   uuid.New(),
		Input:        TransitionInput{Target: StatusScheduled, ScheduledDate: &when},
	})
	if !apperr.IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if len(repo.changes) != 0 {
		t.Error("no status change may be recorded on rejection")
	}
}

func TestTransition_UnknownID(t *testing.T) {
	svc, _ := newTestService()
	id := uuid.New()
	_, err := svc.Transition(context.Background(), TransitionRequest{
		EnrollmentID: &id,
		CampaignID:   uuid.New(),
		Input:        TransitionInput{Target: StatusPending},
	})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestTransition_UpsertByPharmacy(t *testing.T) {
	svc, repo := newTestService()
	campaignID := uuid.New()
	pharmacyID := uuid.New()

	result, err := svc.Transition(context.Background(), TransitionRequest{
		PharmacyID: &pharmacyID,
		CampaignID: campaignID,
		Input:      TransitionInput{Target: StatusProblem, Comment: "injoignable"},
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if result.OldStatus != StatusPending {
		t.Errorf("upserted enrollment must start pending, got %s", result.OldStatus)
	}
	if result.NewStatus != StatusProblem {
		t.Errorf("expected problem, got %s", result.NewStatus)
	}
	if len(repo.enrollments) != 1 {
		t.Errorf("expected 1 enrollment, got %d", len(repo.enrollments))
	}
	if result.Enrollment.Comment == nil || *result.Enrollment.Comment != "injoignable" {
		t.Error("comment must equal the supplied reason")
	}
	if sc := repo.changes[0]; sc.Reason == nil || *sc.Reason != "injoignable" {
		t.Error("reason must be recorded for a problem target")
	}
}

func TestTransition_RepeatedCallLogsTwice(t *testing.T) {
	svc, repo := newTestService()
	campaignID := uuid.New()
	enr := seedEnrollment(t, repo, campaignID, StatusScheduled)

	req := TransitionRequest{
		EnrollmentID: &enr.ID,
		CampaignID:   campaignID,
		Input:        TransitionInput{Target: StatusDone},
	}

	first, err := svc.Transition(context.Background(), req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Transition(context.Background(), req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if !second.Enrollment.DoneDate.Equal(*first.Enrollment.DoneDate) {
		t.Error("repeated transition must converge to the same state")
	}
	if len(repo.changes) != 2 {
		t.Errorf("expected 2 audit rows for 2 calls, got %d", len(repo.changes))
	}
}

func TestTransition_LogFailureAbortsUpdate(t *testing.T) {
	svc, repo := newTestService()
	campaignID := uuid.New()
	enr := seedEnrollment(t, repo, campaignID, StatusPending)
	repo.failLog = true

	when := now.AddDate(0, 0, 5)
	_, err := svc.Transition(context.Background(), TransitionRequest{
		EnrollmentID: &enr.ID,
		CampaignID:   campaignID,
		Input:        TransitionInput{Target: StatusScheduled, ScheduledDate: &when},
	})
	if !apperr.IsPersistence(err) {
		t.Errorf("expected persistence error to propagate for rollback, got %v", err)
	}
}

func TestTransition_RequiresIdentifier(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Transition(context.Background(), TransitionRequest{
		CampaignID: uuid.New(),
		Input:      TransitionInput{Target: StatusPending},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAddPharmacy_DuplicateRejected(t *testing.T) {
	svc, repo := newTestService()
	campaignID := uuid.New()
	pharmacyID := uuid.New()

	first, err := svc.AddPharmacy(context.Background(), campaignID, pharmacyID)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if first.Status != StatusPending {
		t.Errorf("expected pending, got %s", first.Status)
	}

	_, err = svc.AddPharmacy(context.Background(), campaignID, pharmacyID)
	if !apperr.IsValidation(err) {
		t.Errorf("expected duplicate rejection, got %v", err)
	}

	stored := repo.enrollments[first.ID]
	if stored == nil || stored.Status != StatusPending {
		t.Error("existing enrollment must be untouched by the failed duplicate")
	}
}

func TestRemovePharmacy_WrongCampaign(t *testing.T) {
	svc, repo := newTestService()
	enr := seedEnrollment(t, repo, uuid.New(), StatusPending)

	err := svc.RemovePharmacy(context.Background(), uuid.New(), enr.ID)
	if !apperr.IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if _, ok := repo.enrollments[enr.ID]; !ok {
		t.Error("enrollment must not be deleted")
	}
}

func TestStatusLog_NewestFirst(t *testing.T) {
	svc, repo := newTestService()
	campaignID := uuid.New()
	enr := seedEnrollment(t, repo, campaignID, StatusPending)

	when := now.AddDate(0, 0, 5)
	steps := []TransitionInput{
		{Target: StatusScheduled, ScheduledDate: &when},
		{Target: StatusDone},
	}
	for _, in := range steps {
		if _, err := svc.Transition(context.Background(), TransitionRequest{
			EnrollmentID: &enr.ID, CampaignID: campaignID, Input: in,
		}); err != nil {
			t.Fatalf("transition %s: %v", in.Target, err)
		}
	}

	log, err := svc.StatusLog(context.Background(), enr.ID)
	if err != nil {
		t.Fatalf("status log: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(log))
	}
	if log[0].NewStatus != StatusDone || log[1].NewStatus != StatusScheduled {
		t.Error("expected newest-first ordering")
	}
}
