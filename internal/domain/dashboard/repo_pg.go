package dashboard

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/db"
	"github.com/dermocrm/crm/internal/platform/reporting"
)

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

// upcomingWhere keeps the count and page queries in lockstep. A campaign
// qualifies only while its status is active and its date range contains today.
const upcomingWhere = `
	FROM pharmacy_campaigns e
	JOIN campaigns c ON c.id = e.campaign_id
	JOIN pharmacies p ON p.id = e.pharmacy_id
	WHERE e.status = 'scheduled'
	  AND e.scheduled_date IS NOT NULL
	  AND e.scheduled_date >= $1
	  AND e.scheduled_date < $2
	  AND c.status = 'active'
	  AND c.start_date <= $1
	  AND c.end_date >= $1`

func (r *repoPG) UpcomingAppointments(ctx context.Context, today, until time.Time, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+upcomingWhere, today, until).Scan(&total); err != nil {
		return nil, 0, apperr.Persistence("count upcoming appointments", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, e.pharmacy_id, p.name, p.city, c.id, c.name, e.scheduled_date`+
		upcomingWhere+`
		ORDER BY e.scheduled_date, e.enrollment_date
		LIMIT $3 OFFSET $4`,
		today, until, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence("select upcoming appointments", err)
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.EnrollmentID, &a.PharmacyID, &a.PharmacyName, &a.City,
			&a.CampaignID, &a.CampaignName, &a.ScheduledDate); err != nil {
			return nil, 0, apperr.Persistence("scan appointment", err)
		}
		appts = append(appts, &a)
	}
	return appts, total, nil
}

func (r *repoPG) MonthlyCounts(ctx context.Context, monthStart time.Time) (*MonthlyCounts, error) {
	monthEnd := monthStart.AddDate(0, 1, 0)
	prevStart := monthStart.AddDate(0, -1, 0)
	q := r.conn(ctx)

	var mc MonthlyCounts
	err := q.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT pharmacy_id),
		       COALESCE(AVG(duration_minutes), 0),
		       COALESCE(AVG(quality_score), 0)
		FROM visits
		WHERE visit_date >= $1 AND visit_date < $2`, monthStart, monthEnd).
		Scan(&mc.VisitCount, &mc.PharmaciesVisited, &mc.AvgDurationMinutes, &mc.AvgQualityScore)
	if err != nil {
		return nil, apperr.Persistence("aggregate monthly visits", err)
	}

	err = q.QueryRow(ctx, `SELECT COUNT(*) FROM visits WHERE visit_date >= $1 AND visit_date < $2`,
		prevStart, monthStart).Scan(&mc.PrevMonthVisitCount)
	if err != nil {
		return nil, apperr.Persistence("count previous month visits", err)
	}

	err = q.QueryRow(ctx, `SELECT COUNT(*) FROM pharmacies WHERE active`).Scan(&mc.ActivePharmacies)
	if err != nil {
		return nil, apperr.Persistence("count active pharmacies", err)
	}

	err = q.QueryRow(ctx, `SELECT COUNT(*) FROM pharmacies WHERE created_at >= $1 AND created_at < $2`,
		monthStart, monthEnd).Scan(&mc.NewPharmacies)
	if err != nil {
		return nil, apperr.Persistence("count new pharmacies", err)
	}
	return &mc, nil
}

func (r *repoPG) VisitSeries(ctx context.Context, since time.Time, buckets int, step time.Duration) ([]SeriesPoint, error) {
	series := make([]SeriesPoint, 0, buckets)
	for i := 0; i < buckets; i++ {
		from := since.Add(time.Duration(i) * step)
		to := from.Add(step)

		var count int
		err := r.conn(ctx).QueryRow(ctx,
			`SELECT COUNT(*) FROM visits WHERE visit_date >= $1 AND visit_date < $2`, from, to).Scan(&count)
		if err != nil {
			return nil, apperr.Persistence("count visit bucket", err)
		}
		series = append(series, SeriesPoint{Label: from.Format("02/01"), Count: count})
	}
	return series, nil
}

func (r *repoPG) RegionDistribution(ctx context.Context) ([]RegionCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT COALESCE(NULLIF(region, ''), 'Autre'), COUNT(*)
		FROM pharmacies
		WHERE active
		GROUP BY 1
		ORDER BY COUNT(*) DESC, 1`)
	if err != nil {
		return nil, apperr.Persistence("select region distribution", err)
	}
	defer rows.Close()

	var regions []RegionCount
	for rows.Next() {
		var rc RegionCount
		if err := rows.Scan(&rc.Region, &rc.Count); err != nil {
			return nil, apperr.Persistence("scan region count", err)
		}
		regions = append(regions, rc)
	}
	return regions, nil
}

func (r *repoPG) TopProducts(ctx context.Context, n int) ([]TopProduct, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pr.id, pr.name, COUNT(*)
		FROM visit_products vp
		JOIN products pr ON pr.id = vp.product_id
		GROUP BY pr.id, pr.name
		ORDER BY COUNT(*) DESC, pr.name
		LIMIT $1`, n)
	if err != nil {
		return nil, apperr.Persistence("select top products", err)
	}
	defer rows.Close()

	var products []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Trainings); err != nil {
			return nil, apperr.Persistence("scan top product", err)
		}
		products = append(products, tp)
	}
	return products, nil
}

func (r *repoPG) LiveStats(ctx context.Context, today time.Time) (*LiveStats, error) {
	var s LiveStats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM pharmacies WHERE active),
			(SELECT COUNT(*) FROM visits),
			(SELECT COUNT(*) FROM visits WHERE visit_date::date = $1::date),
			(SELECT COUNT(*) FROM campaigns WHERE status = 'active'),
			(SELECT COUNT(*) FROM products WHERE active),
			(SELECT COUNT(*) FROM referents WHERE active)`, today).
		Scan(&s.Pharmacies, &s.Visits, &s.VisitsToday, &s.ActiveCampaigns, &s.Products, &s.Referents)
	if err != nil {
		return nil, apperr.Persistence("select live stats", err)
	}
	return &s, nil
}

func (r *repoPG) VisitReportRows(ctx context.Context, f reporting.VisitReportFilter) (*reporting.VisitReportData, error) {
	query := `
		SELECT v.visit_date, p.name, p.city, v.objective, v.created_by,
		       v.duration_minutes, v.quality_score,
		       COALESCE(ARRAY_AGG(pr.name ORDER BY pr.name) FILTER (WHERE pr.id IS NOT NULL), '{}')
		FROM visits v
		JOIN pharmacies p ON p.id = v.pharmacy_id
		LEFT JOIN visit_products vp ON vp.visit_id = v.id
		LEFT JOIN products pr ON pr.id = vp.product_id
		WHERE v.visit_date >= $1 AND v.visit_date <= $2`
	args := []interface{}{f.From, f.To}
	if f.ReferentID != nil {
		query += ` AND p.referent_id = $3`
		args = append(args, *f.ReferentID)
	}
	query += `
		GROUP BY v.id, p.name, p.city
		ORDER BY v.visit_date`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("select visit report rows", err)
	}
	defer rows.Close()

	data := reporting.VisitReportData{From: f.From, To: f.To}
	var qualitySum int
	for rows.Next() {
		var row reporting.VisitRow
		var duration, quality int
		if err := rows.Scan(&row.Date, &row.PharmacyName, &row.City, &row.Objective, &row.AgentName,
			&duration, &quality, &row.Products); err != nil {
			return nil, apperr.Persistence("scan visit report row", err)
		}
		data.TotalDurationMinutes += duration
		qualitySum += quality
		data.Visits = append(data.Visits, row)
	}
	if n := len(data.Visits); n > 0 {
		data.AvgQuality = math.Round(10*float64(qualitySum)/float64(n)) / 10
	}
	return &data, nil
}

func (r *repoPG) CampaignReport(ctx context.Context, campaignID uuid.UUID) (*reporting.CampaignReportData, error) {
	q := r.conn(ctx)

	var data reporting.CampaignReportData
	err := q.QueryRow(ctx, `SELECT name, start_date, end_date FROM campaigns WHERE id = $1`, campaignID).
		Scan(&data.CampaignName, &data.StartDate, &data.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("campaign %s not found", campaignID)
	}
	if err != nil {
		return nil, apperr.Persistence("select campaign", err)
	}

	data.StatusCounts = map[string]int{}
	rows, err := q.Query(ctx,
		`SELECT status, COUNT(*) FROM pharmacy_campaigns WHERE campaign_id = $1 GROUP BY status`, campaignID)
	if err != nil {
		return nil, apperr.Persistence("count enrollment statuses", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, apperr.Persistence("scan status count", err)
		}
		data.StatusCounts[status] = count
	}
	rows.Close()

	total := 0
	for _, c := range data.StatusCounts {
		total += c
	}
	if total > 0 {
		data.Progress = math.Round(1000*float64(data.StatusCounts["done"])/float64(total)) / 10
	}

	rows, err = q.Query(ctx, `
		SELECT p.name, p.city, e.status, COALESCE(e.comment, '')
		FROM pharmacy_campaigns e
		JOIN pharmacies p ON p.id = e.pharmacy_id
		WHERE e.campaign_id = $1
		ORDER BY p.name`, campaignID)
	if err != nil {
		return nil, apperr.Persistence("select campaign pharmacies", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row reporting.CampaignPharmacyRow
		if err := rows.Scan(&row.PharmacyName, &row.City, &row.Status, &row.LastComment); err != nil {
			return nil, apperr.Persistence("scan campaign pharmacy", err)
		}
		data.Pharmacies = append(data.Pharmacies, row)
	}
	return &data, nil
}
