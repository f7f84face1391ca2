package enrollment

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

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
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

const enrCols = `e.id, e.pharmacy_id, e.campaign_id, e.status,
	e.scheduled_date, e.done_date, e.completed_date, e.comment,
	e.enrollment_date, e.created_at, e.updated_at, p.name`

func (r *repoPG) Create(ctx context.Context, e *Enrollment) error {
	e.ID = uuid.New()
	if e.Status == "" {
		e.Status = StatusPending
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_campaigns (
			id, pharmacy_id, campaign_id, status,
			scheduled_date, done_date, completed_date, comment, enrollment_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())`,
		e.ID, e.PharmacyID, e.CampaignID, e.Status,
		e.ScheduledDate, e.DoneDate, e.CompletedDate, e.Comment,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Validation("pharmacy %s is already enrolled in campaign %s", e.PharmacyID, e.CampaignID)
		}
		return apperr.Persistence("insert enrollment", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+enrCols+`
		FROM pharmacy_campaigns e JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.id = $1`, id)
	e, err := scanEnrollment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("enrollment %s not found", id)
	}
	if err != nil {
		return nil, apperr.Persistence("select enrollment", err)
	}
	return e, nil
}

func (r *repoPG) GetByPair(ctx context.Context, pharmacyID, campaignID uuid.UUID) (*Enrollment, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+enrCols+`
		FROM pharmacy_campaigns e JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.pharmacy_id = $1 AND e.campaign_id = $2`, pharmacyID, campaignID)
	e, err := scanEnrollment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("enrollment for pharmacy %s in campaign %s not found", pharmacyID, campaignID)
	}
	if err != nil {
		return nil, apperr.Persistence("select enrollment", err)
	}
	return e, nil
}

func (r *repoPG) Update(ctx context.Context, e *Enrollment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy_campaigns SET
			status=$2, scheduled_date=$3, done_date=$4, completed_date=$5, comment=$6, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Status, e.ScheduledDate, e.DoneDate, e.CompletedDate, e.Comment,
	)
	if err != nil {
		return apperr.Persistence("update enrollment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("enrollment %s not found", e.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy_campaigns WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete enrollment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("enrollment %s not found", id)
	}
	return nil
}

func (r *repoPG) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM pharmacy_campaigns WHERE campaign_id = $1`, campaignID).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence("count enrollments", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+enrCols+`
		FROM pharmacy_campaigns e JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.campaign_id = $1
		ORDER BY p.name LIMIT $2 OFFSET $3`, campaignID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence("select enrollments", err)
	}
	defer rows.Close()

	var enrollments []*Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, apperr.Persistence("scan enrollment", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, total, nil
}

func (r *repoPG) AddStatusChange(ctx context.Context, sc *StatusChange) error {
	sc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO status_change_logs (id, enrollment_id, old_status, new_status, reason, actor)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		sc.ID, sc.EnrollmentID, sc.OldStatus, sc.NewStatus, sc.Reason, sc.Actor,
	)
	if err != nil {
		return apperr.Persistence("insert status change", err)
	}
	return nil
}

func (r *repoPG) ListStatusChanges(ctx context.Context, enrollmentID uuid.UUID) ([]*StatusChange, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, enrollment_id, old_status, new_status, reason, actor, created_at
		FROM status_change_logs WHERE enrollment_id = $1
		ORDER BY created_at DESC`, enrollmentID)
	if err != nil {
		return nil, apperr.Persistence("select status changes", err)
	}
	defer rows.Close()

	var changes []*StatusChange
	for rows.Next() {
		var sc StatusChange
		if err := rows.Scan(&sc.ID, &sc.EnrollmentID, &sc.OldStatus, &sc.NewStatus, &sc.Reason, &sc.Actor, &sc.CreatedAt); err != nil {
			return nil, apperr.Persistence("scan status change", err)
		}
		changes = append(changes, &sc)
	}
	return changes, nil
}

// eventDate picks the most relevant date per enrollment for the calendar:
// scheduled first, then done, then completed.
const eventDate = `COALESCE(e.scheduled_date, e.done_date, e.completed_date)`

func (r *repoPG) CalendarEvents(ctx context.Context, campaignID uuid.UUID) ([]*CalendarEvent, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, p.name, `+eventDate+`, e.status, e.comment
		FROM pharmacy_campaigns e JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.campaign_id = $1 AND `+eventDate+` IS NOT NULL
		ORDER BY `+eventDate, campaignID)
	if err != nil {
		return nil, apperr.Persistence("select calendar events", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *repoPG) ListByDate(ctx context.Context, campaignID uuid.UUID, day time.Time) ([]*CalendarEvent, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, p.name, `+eventDate+`, e.status, e.comment
		FROM pharmacy_campaigns e JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.campaign_id = $1 AND (`+eventDate+`)::date = $2::date
		ORDER BY `+eventDate, campaignID, day)
	if err != nil {
		return nil, apperr.Persistence("select enrollments by date", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *repoPG) MapEvents(ctx context.Context, campaignID uuid.UUID) ([]*MapEvent, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, p.name, e.status, p.latitude, p.longitude
		FROM pharmacy_campaigns e JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.campaign_id = $1 AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL
		ORDER BY p.name`, campaignID)
	if err != nil {
		return nil, apperr.Persistence("select map events", err)
	}
	defer rows.Close()

	var events []*MapEvent
	for rows.Next() {
		var ev MapEvent
		if err := rows.Scan(&ev.EnrollmentID, &ev.PharmacyName, &ev.Status, &ev.Latitude, &ev.Longitude); err != nil {
			return nil, apperr.Persistence("scan map event", err)
		}
		events = append(events, &ev)
	}
	return events, nil
}

func collectEvents(rows pgx.Rows) ([]*CalendarEvent, error) {
	var events []*CalendarEvent
	for rows.Next() {
		var ev CalendarEvent
		if err := rows.Scan(&ev.EnrollmentID, &ev.PharmacyName, &ev.Date, &ev.Status, &ev.Comment); err != nil {
			return nil, apperr.Persistence("scan calendar event", err)
		}
		events = append(events, &ev)
	}
	return events, nil
}

func scanEnrollment(row pgx.Row) (*Enrollment, error) {
	var e Enrollment
	err := row.Scan(
		&e.ID, &e.PharmacyID, &e.CampaignID, &e.Status,
		&e.ScheduledDate, &e.DoneDate, &e.CompletedDate, &e.Comment,
		&e.EnrollmentDate, &e.CreatedAt, &e.UpdatedAt, &e.PharmacyName,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
