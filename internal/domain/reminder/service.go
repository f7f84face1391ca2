package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/mail"
)

// Default time of day overlaid on the base date when none is supplied.
const (
	defaultHour   = 9
	defaultMinute = 30
)

type Service struct {
	repo        Repository
	enrollments EnrollmentSource
	sender      mail.Sender
	templates   *mail.TemplateEngine
	sendTimeout time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(repo Repository, enrollments EnrollmentSource, sender mail.Sender,
	templates *mail.TemplateEngine, sendTimeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		enrollments: enrollments,
		sender:      sender,
		templates:   templates,
		sendTimeout: sendTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateRequest carries the caller-supplied parts of a reminder.
type CreateRequest struct {
	EnrollmentID uuid.UUID
	Type         string
	TimeOfDay    string // HH:MM, defaults to 09:30
	EmailTo      string
	EmailCC      string
	Subject      string
	Body         string
	SendNow      bool
	Actor        string
}

// Result reports a created reminder and the outcome of the optional
// synchronous send. EmailError is data, not a failure of the creation.
type Result struct {
	Reminder   *Reminder `json:"reminder"`
	EmailSent  bool      `json:"email_sent"`
	EmailError string    `json:"email_error,omitempty"`
}

// Create persists a reminder and optionally sends its email synchronously.
// The reminder row is written before any send attempt so an email failure
// never loses the record.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Result, error) {
	info, err := s.enrollments.EnrollmentInfo(ctx, req.EnrollmentID)
	if err != nil {
		return nil, err
	}

	hour, minute, err := parseTimeOfDay(req.TimeOfDay)
	if err != nil {
		return nil, err
	}

	// Base date is the enrollment's scheduled date, falling back to now.
	base := s.now()
	if info.ScheduledDate != nil {
		base = *info.ScheduledDate
	}
	scheduled := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())

	rem := &Reminder{
		EnrollmentID:  req.EnrollmentID,
		Type:          req.Type,
		ScheduledTime: scheduled,
		EmailTo:       req.EmailTo,
		EmailCC:       req.EmailCC,
		Subject:       req.Subject,
		Body:          req.Body,
		CreatedBy:     req.Actor,
	}
	if rem.Type == "" {
		rem.Type = TypeVisitConfirmation
	}
	if rem.EmailTo == "" {
		rem.EmailTo = info.PharmacyEmail
	}
	if rem.Subject == "" || rem.Body == "" {
		subject, body, tplErr := s.templates.Render(mail.VisitConfirmationTemplate, map[string]string{
			"campaign_name": info.CampaignName,
			"pharmacy_name": info.PharmacyName,
			"visit_date":    scheduled.Format("02/01/2006"),
			"visit_time":    scheduled.Format("15:04"),
		})
		if tplErr != nil {
			return nil, fmt.Errorf("render reminder template: %w", tplErr)
		}
		if rem.Subject == "" {
			rem.Subject = subject
		}
		if rem.Body == "" {
			rem.Body = body
		}
	}

	if err := s.repo.Create(ctx, rem); err != nil {
		return nil, err
	}

	result := &Result{Reminder: rem}
	if req.SendNow && rem.EmailTo != "" {
		s.send(ctx, rem, result)
	}
	return result, nil
}

// send attempts the synchronous email with a bounded timeout. Failures are
// absorbed into the result.
func (s *Service) send(ctx context.Context, rem *Reminder, result *Result) {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	msg := mail.Message{
		To:      rem.EmailTo,
		Subject: rem.Subject,
		Body:    rem.Body,
	}
	if rem.EmailCC != "" {
		msg.CC = []string{rem.EmailCC}
	}

	if err := s.sender.Send(sendCtx, msg); err != nil {
		s.logger.Warn().Err(err).Str("reminder_id", rem.ID.String()).Msg("reminder email failed")
		result.EmailError = err.Error()
		return
	}

	sentAt := s.now()
	if err := s.repo.MarkSent(ctx, rem.ID, sentAt); err != nil {
		// The email went out; surface the bookkeeping failure as data too.
		result.EmailSent = true
		result.EmailError = err.Error()
		return
	}
	rem.IsSent = true
	rem.SentAt = &sentAt
	result.EmailSent = true
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]*Reminder, error) {
	if _, err := s.enrollments.EnrollmentInfo(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return s.repo.ListByEnrollment(ctx, enrollmentID)
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	if s == "" {
		return defaultHour, defaultMinute, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, apperr.Validation("invalid time_of_day %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, apperr.Validation("invalid hour in time_of_day %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, apperr.Validation("invalid minute in time_of_day %q", s)
	}
	return hour, minute, nil
}
