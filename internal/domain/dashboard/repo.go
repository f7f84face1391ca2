package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dermocrm/crm/internal/platform/reporting"
)

// Repository runs the read-only aggregate queries backing the dashboard and
// the PDF reports. Appointments come back without days_until/urgency; the
// service derives those.
type Repository interface {
	UpcomingAppointments(ctx context.Context, today, until time.Time, limit, offset int) ([]*Appointment, int, error)
	MonthlyCounts(ctx context.Context, monthStart time.Time) (*MonthlyCounts, error)
	VisitSeries(ctx context.Context, since time.Time, buckets int, step time.Duration) ([]SeriesPoint, error)
	RegionDistribution(ctx context.Context) ([]RegionCount, error)
	TopProducts(ctx context.Context, n int) ([]TopProduct, error)
	LiveStats(ctx context.Context, today time.Time) (*LiveStats, error)

	VisitReportRows(ctx context.Context, f reporting.VisitReportFilter) (*reporting.VisitReportData, error)
	CampaignReport(ctx context.Context, campaignID uuid.UUID) (*reporting.CampaignReportData, error)
}
