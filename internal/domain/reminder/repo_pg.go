package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns the pgx-backed reminder repository. It also implements
// EnrollmentSource.
func NewRepo(pool *pgxpool.Pool) *repoPG {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const remCols = `id, enrollment_id, type, scheduled_time, email_to, email_cc,
	subject, body, is_sent, sent_at, created_by, created_at`

func (r *repoPG) Create(ctx context.Context, rem *Reminder) error {
	rem.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reminders (
			id, enrollment_id, type, scheduled_time, email_to, email_cc,
			subject, body, is_sent, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rem.ID, rem.EnrollmentID, rem.Type, rem.ScheduledTime, rem.EmailTo, rem.EmailCC,
		rem.Subject, rem.Body, rem.IsSent, rem.CreatedBy,
	)
	if err != nil {
		return apperr.Persistence("insert reminder", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+remCols+` FROM reminders WHERE id = $1`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("reminder %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("select reminder", err)
	}
	return rem, nil
}

func (r *repoPG) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]*Reminder, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+remCols+` FROM reminders WHERE enrollment_id = $1 ORDER BY scheduled_time`, enrollmentID)
	if err != nil {
		return nil, apperr.Persistence("select reminders", err)
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, apperr.Persistence("scan reminder", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, nil
}

func (r *repoPG) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE reminders SET is_sent = TRUE, sent_at = $2 WHERE id = $1`, id, sentAt)
	if err != nil {
		return apperr.Persistence("mark reminder sent", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("reminder %s not found", id)
	}
	return nil
}

func (r *repoPG) EnrollmentInfo(ctx context.Context, enrollmentID uuid.UUID) (*EnrollmentInfo, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT e.id, e.scheduled_date, c.name, p.name, p.email
		FROM pharmacy_campaigns e
		JOIN campaigns c ON c.id = e.campaign_id
		JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.id = $1`, enrollmentID)

	var info EnrollmentInfo
	err := row.Scan(&info.ID, &info.ScheduledDate, &info.CampaignName, &info.PharmacyName, &info.PharmacyEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("enrollment %s not found", enrollmentID)
	}
	if err != nil {
		return nil, apperr.Persistence("select enrollment info", err)
	}
	return &info, nil
}

func scanReminder(row pgx.Row) (*Reminder, error) {
	var rem Reminder
	err := row.Scan(
		&rem.ID, &rem.EnrollmentID, &rem.Type, &rem.ScheduledTime, &rem.EmailTo, &rem.EmailCC,
		&rem.Subject, &rem.Body, &rem.IsSent, &rem.SentAt, &rem.CreatedBy, &rem.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}
