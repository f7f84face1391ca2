package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	campaigns   map[uuid.UUID]*Campaign
	products    map[uuid.UUID][]uuid.UUID
	enrollments map[uuid.UUID][]uuid.UUID
	failEnroll  bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		campaigns:   make(map[uuid.UUID]*Campaign),
		products:    make(map[uuid.UUID][]uuid.UUID),
		enrollments: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockRepo) Create(_ context.Context, c *Campaign) error {
	c.ID = uuid.New()
	m.campaigns[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, apperr.NotFound("campaign %s not found", id)
	}
	return c, nil
}

func (m *mockRepo) Update(_ context.Context, c *Campaign) error {
	if _, ok := m.campaigns[c.ID]; !ok {
		return apperr.NotFound("campaign %s not found", c.ID)
	}
	m.campaigns[c.ID] = c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.campaigns, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, status string, limit, offset int) ([]*Campaign, int, error) {
	var result []*Campaign
	for _, c := range m.campaigns {
		if status != "" && c.Status != status {
			continue
		}
		result = append(result, c)
	}
	return result, len(result), nil
}

func (m *mockRepo) SetProducts(_ context.Context, campaignID uuid.UUID, productIDs []uuid.UUID) error {
	m.products[campaignID] = productIDs
	return nil
}

func (m *mockRepo) EnrollPharmacies(_ context.Context, campaignID uuid.UUID, pharmacyIDs []uuid.UUID) error {
	if m.failEnroll {
		return apperr.Persistence("enroll pharmacy", errors.New("duplicate key"))
	}
	m.enrollments[campaignID] = append(m.enrollments[campaignID], pharmacyIDs...)
	return nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreate_WithSetup(t *testing.T) {
	repo := newMockRepo()
	tx := &passthroughTx{}
	svc := NewService(repo, tx)

	pharmacies := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	products := []uuid.UUID{uuid.New()}
	camp := &Campaign{Name: "Hydratation Hiver", StartDate: day(2026, 10, 1), EndDate: day(2026, 12, 31)}

	err := svc.Create(context.Background(), CreateInput{
		Campaign: camp, ProductIDs: products, PharmacyIDs: pharmacies,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if camp.Status != StatusDraft {
		t.Errorf("expected default draft status, got %s", camp.Status)
	}
	if tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", tx.calls)
	}
	if got := len(repo.enrollments[camp.ID]); got != 3 {
		t.Errorf("expected 3 enrollments, got %d", got)
	}
	if got := len(repo.products[camp.ID]); got != 1 {
		t.Errorf("expected 1 product association, got %d", got)
	}
}

func TestCreate_EnrollFailurePropagates(t *testing.T) {
	repo := newMockRepo()
	repo.failEnroll = true
	svc := NewService(repo, &passthroughTx{})

	camp := &Campaign{Name: "X", StartDate: day(2026, 10, 1), EndDate: day(2026, 12, 31)}
	err := svc.Create(context.Background(), CreateInput{
		Campaign: camp, PharmacyIDs: []uuid.UUID{uuid.New()},
	})
	if !apperr.IsPersistence(err) {
		t.Errorf("expected persistence error to propagate for rollback, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), &passthroughTx{})

	cases := []*Campaign{
		{Name: "", StartDate: day(2026, 10, 1), EndDate: day(2026, 12, 31)},
		{Name: "X"},
		{Name: "X", StartDate: day(2026, 12, 31), EndDate: day(2026, 10, 1)},
	}
	for _, c := range cases {
		if err := svc.Create(context.Background(), CreateInput{Campaign: c}); !apperr.IsValidation(err) {
			t.Errorf("%+v: expected validation error, got %v", c, err)
		}
	}
}

func TestIsActiveOn(t *testing.T) {
	camp := &Campaign{
		Status:    StatusActive,
		StartDate: day(2026, 9, 1),
		EndDate:   day(2026, 9, 30),
	}

	cases := []struct {
		day    time.Time
		status string
		want   bool
	}{
		{day(2026, 9, 1), StatusActive, true},
		{day(2026, 9, 15), StatusActive, true},
		{day(2026, 9, 30), StatusActive, true},
		{day(2026, 8, 31), StatusActive, false},
		{day(2026, 10, 1), StatusActive, false},
		{day(2026, 9, 15), StatusDraft, false},
		{day(2026, 9, 15), StatusCompleted, false},
	}
	for _, tc := range cases {
		camp.Status = tc.status
		if got := camp.IsActiveOn(tc.day); got != tc.want {
			t.Errorf("IsActiveOn(%s) with status %s = %v, want %v", tc.day.Format("2006-01-02"), tc.status, got, tc.want)
		}
	}
}

func TestList_InvalidStatus(t *testing.T) {
	svc := NewService(newMockRepo(), &passthroughTx{})
	_, _, err := svc.List(context.Background(), "bogus", 20, 0)
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
