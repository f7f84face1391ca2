package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/mail"
)

var now = time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

type mockRepo struct {
	reminders  map[uuid.UUID]*Reminder
	failMark   bool
	failCreate bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{reminders: map[uuid.UUID]*Reminder{}}
}

func (m *mockRepo) Create(_ context.Context, r *Reminder) error {
	if m.failCreate {
		return apperr.Persistence("insert reminder", errors.New("boom"))
	}
	r.ID = uuid.New()
	r.CreatedAt = now
	cp := *r
	m.reminders[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Reminder, error) {
	r, ok := m.reminders[id]
	if !ok {
		return nil, apperr.NotFound("reminder %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) ListByEnrollment(_ context.Context, enrollmentID uuid.UUID) ([]*Reminder, error) {
	var out []*Reminder
	for _, r := range m.reminders {
		if r.EnrollmentID == enrollmentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	if m.failMark {
		return apperr.Persistence("mark reminder sent", errors.New("boom"))
	}
	r, ok := m.reminders[id]
	if !ok {
		return apperr.NotFound("reminder %s not found", id)
	}
	r.IsSent = true
	r.SentAt = &sentAt
	return nil
}

type mockSource struct {
	infos map[uuid.UUID]*EnrollmentInfo
}

func (m *mockSource) EnrollmentInfo(_ context.Context, id uuid.UUID) (*EnrollmentInfo, error) {
	info, ok := m.infos[id]
	if !ok {
		return nil, apperr.NotFound("enrollment %s not found", id)
	}
	return info, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockSource, *mail.MockSender, uuid.UUID) {
	t.Helper()
	repo := newMockRepo()
	scheduled := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	enrollmentID := uuid.New()
	source := &mockSource{infos: map[uuid.UUID]*EnrollmentInfo{
		enrollmentID: {
			ID:            enrollmentID,
			ScheduledDate: &scheduled,
			CampaignName:  "Solaire 2026",
			PharmacyName:  "Pharmacie du Parc",
			PharmacyEmail: "contact@pharmacie-du-parc.fr",
		},
	}}
	sender := &mail.MockSender{}
	svc := NewService(repo, source, sender, mail.NewTemplateEngine(), 5*time.Second, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc, repo, source, sender, enrollmentID
}

func TestCreate_Defaults(t *testing.T) {
	svc, repo, _, _, enrollmentID := newTestService(t)

	result, err := svc.Create(context.Background(), CreateRequest{
		EnrollmentID: enrollmentID,
		Actor:        "rep-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rem := result.Reminder

	want := time.Date(2026, 9, 15, 9, 30, 0, 0, time.UTC)
	if !rem.ScheduledTime.Equal(want) {
		t.Errorf("scheduled time = %v, want %v", rem.ScheduledTime, want)
	}
	if rem.Type != TypeVisitConfirmation {
		t.Errorf("type = %q", rem.Type)
	}
	if rem.EmailTo != "contact@pharmacie-du-parc.fr" {
		t.Errorf("email_to = %q", rem.EmailTo)
	}
	if rem.Subject != "Confirmation de visite - Solaire 2026" {
		t.Errorf("subject = %q", rem.Subject)
	}
	if !strings.Contains(rem.Body, "Pharmacie du Parc") || !strings.Contains(rem.Body, "15/09/2026") {
		t.Errorf("body missing enrollment details: %q", rem.Body)
	}
	if len(repo.reminders) != 1 {
		t.Errorf("expected 1 persisted reminder, got %d", len(repo.reminders))
	}
	if result.EmailSent {
		t.Error("no send requested, should not report sent")
	}
}

func TestCreate_NoScheduledDateUsesToday(t *testing.T) {
	svc, _, source, _, enrollmentID := newTestService(t)
	source.infos[enrollmentID].ScheduledDate = nil

	result, err := svc.Create(context.Background(), CreateRequest{
		EnrollmentID: enrollmentID,
		TimeOfDay:    "16:45",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := time.Date(2026, 9, 1, 16, 45, 0, 0, time.UTC)
	if !result.Reminder.ScheduledTime.Equal(want) {
		t.Errorf("scheduled time = %v, want %v", result.Reminder.ScheduledTime, want)
	}
}

func TestCreate_InvalidTimeOfDay(t *testing.T) {
	svc, _, _, _, enrollmentID := newTestService(t)

	for _, tod := range []string{"930", "25:00", "09:61", "ab:cd"} {
		_, err := svc.Create(context.Background(), CreateRequest{
			EnrollmentID: enrollmentID,
			TimeOfDay:    tod,
		})
		if !apperr.IsValidation(err) {
			t.Errorf("time_of_day %q: expected validation error, got %v", tod, err)
		}
	}
}

func TestCreate_SendNowSuccess(t *testing.T) {
	svc, repo, _, sender, enrollmentID := newTestService(t)

	result, err := svc.Create(context.Background(), CreateRequest{
		EnrollmentID: enrollmentID,
		SendNow:      true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !result.EmailSent || result.EmailError != "" {
		t.Fatalf("expected clean send, got sent=%v error=%q", result.EmailSent, result.EmailError)
	}
	if !result.Reminder.IsSent || result.Reminder.SentAt == nil {
		t.Error("reminder should be marked sent")
	}

	calls := sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(calls))
	}
	if calls[0].To != "contact@pharmacie-du-parc.fr" {
		t.Errorf("sent to %q", calls[0].To)
	}

	stored := repo.reminders[result.Reminder.ID]
	if !stored.IsSent {
		t.Error("persisted reminder should be marked sent")
	}
}

func TestCreate_SendFailureStillPersists(t *testing.T) {
	svc, repo, _, sender, enrollmentID := newTestService(t)
	sender.ShouldFail = true
	sender.FailError = "smtp unreachable"

	result, err := svc.Create(context.Background(), CreateRequest{
		EnrollmentID: enrollmentID,
		SendNow:      true,
	})
	if err != nil {
		t.Fatalf("send failure must not fail creation: %v", err)
	}
	if result.EmailSent {
		t.Error("email should be reported unsent")
	}
	if result.EmailError != "smtp unreachable" {
		t.Errorf("email_error = %q", result.EmailError)
	}
	if result.Reminder.IsSent {
		t.Error("reminder must stay unsent")
	}
	if len(repo.reminders) != 1 {
		t.Errorf("reminder must be persisted despite send failure, got %d", len(repo.reminders))
	}
}

func TestCreate_NoRecipientSkipsSend(t *testing.T) {
	svc, _, source, sender, enrollmentID := newTestService(t)
	source.infos[enrollmentID].PharmacyEmail = ""

	result, err := svc.Create(context.Background(), CreateRequest{
		EnrollmentID: enrollmentID,
		SendNow:      true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.EmailSent || len(sender.Calls()) != 0 {
		t.Error("no recipient, nothing should be sent")
	}
}

func TestCreate_CustomSubjectKept(t *testing.T) {
	svc, _, _, _, enrollmentID := newTestService(t)

	result, err := svc.Create(context.Background(), CreateRequest{
		EnrollmentID: enrollmentID,
		Subject:      "Rappel personnalisé",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Reminder.Subject != "Rappel personnalisé" {
		t.Errorf("subject = %q", result.Reminder.Subject)
	}
	if result.Reminder.Body == "" {
		t.Error("body should still default from template")
	}
}

func TestCreate_UnknownEnrollment(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateRequest{EnrollmentID: uuid.New()})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListByEnrollment_UnknownEnrollment(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.ListByEnrollment(context.Background(), uuid.New())
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
