package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/reporting"
)

const (
	DefaultWindowDays = 7

	seriesBuckets = 6
	seriesStep    = 30 * 24 * time.Hour
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ClassifyUrgency maps days-until-appointment to the tri-level urgency tag.
func ClassifyUrgency(daysUntil int) string {
	switch {
	case daysUntil >= 7:
		return UrgencyFar
	case daysUntil >= 3:
		return UrgencySoon
	default:
		return UrgencyUrgent
	}
}

// BuildKPIs derives the indicator block from raw monthly aggregates.
// Coverage rate is distinct pharmacies visited over active pharmacies, as a
// percentage rounded to one decimal.
func BuildKPIs(year int, month time.Month, mc MonthlyCounts) KPIs {
	k := KPIs{
		Year:               year,
		Month:              int(month),
		VisitCount:         mc.VisitCount,
		MonthOverMonth:     mc.VisitCount - mc.PrevMonthVisitCount,
		AvgDurationMinutes: math.Round(10*mc.AvgDurationMinutes) / 10,
		AvgQualityScore:    math.Round(10*mc.AvgQualityScore) / 10,
		NewPharmacies:      mc.NewPharmacies,
	}
	if mc.ActivePharmacies > 0 {
		k.CoverageRate = math.Round(1000*float64(mc.PharmaciesVisited)/float64(mc.ActivePharmacies)) / 10
	}
	return k
}

// Upcoming returns scheduled enrollments falling within the window, tagged
// with days_until and urgency.
func (s *Service) Upcoming(ctx context.Context, windowDays, limit, offset int) ([]*Appointment, int, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	today := startOfDay(s.now())
	until := today.AddDate(0, 0, windowDays+1)

	appts, total, err := s.repo.UpcomingAppointments(ctx, today, until, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, a := range appts {
		a.DaysUntil = int(startOfDay(a.ScheduledDate).Sub(today).Hours() / 24)
		a.Urgency = ClassifyUrgency(a.DaysUntil)
	}
	return appts, total, nil
}

// KPIs computes the indicator block for the given calendar month. Zero
// year/month default to the current month.
func (s *Service) KPIs(ctx context.Context, year int, month time.Month) (*KPIs, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	if month < time.January || month > time.December {
		return nil, apperr.Validation("invalid month: %d", month)
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	mc, err := s.repo.MonthlyCounts(ctx, monthStart)
	if err != nil {
		return nil, err
	}
	k := BuildKPIs(year, month, *mc)
	return &k, nil
}

func (s *Service) Charts(ctx context.Context) (*Charts, error) {
	since := startOfDay(s.now()).Add(-seriesBuckets * seriesStep)
	series, err := s.repo.VisitSeries(ctx, since, seriesBuckets, seriesStep)
	if err != nil {
		return nil, err
	}
	regions, err := s.repo.RegionDistribution(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProducts(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &Charts{VisitSeries: series, Regions: regions, TopProducts: top}, nil
}

func (s *Service) Stats(ctx context.Context) (*LiveStats, error) {
	return s.repo.LiveStats(ctx, startOfDay(s.now()))
}

// VisitReportData implements reporting.DataSource.
func (s *Service) VisitReportData(ctx context.Context, f reporting.VisitReportFilter) (*reporting.VisitReportData, error) {
	return s.repo.VisitReportRows(ctx, f)
}

// CampaignReportData implements reporting.DataSource.
func (s *Service) CampaignReportData(ctx context.Context, campaignID uuid.UUID) (*reporting.CampaignReportData, error) {
	return s.repo.CampaignReport(ctx, campaignID)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
