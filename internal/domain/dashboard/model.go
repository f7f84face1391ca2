// Package dashboard aggregates read-only KPIs, charts, and the
// upcoming-appointments feed for the home screen, and feeds the PDF reports.
package dashboard

import (
	"time"

	"github.com/google/uuid"
)

// Urgency levels for upcoming appointments.
const (
	UrgencyFar    = "far"
	UrgencySoon   = "soon"
	UrgencyUrgent = "urgent"
)

// Appointment is one upcoming scheduled enrollment.
type Appointment struct {
	EnrollmentID  uuid.UUID `json:"enrollment_id"`
	PharmacyID    uuid.UUID `json:"pharmacy_id"`
	PharmacyName  string    `json:"pharmacy_name"`
	City          string    `json:"city,omitempty"`
	CampaignID    uuid.UUID `json:"campaign_id"`
	CampaignName  string    `json:"campaign_name"`
	ScheduledDate time.Time `json:"scheduled_date"`
	DaysUntil     int       `json:"days_until"`
	Urgency       string    `json:"urgency"`
}

// MonthlyCounts holds the raw aggregates KPIs are derived from.
type MonthlyCounts struct {
	VisitCount          int
	PrevMonthVisitCount int
	PharmaciesVisited   int
	ActivePharmacies    int
	AvgDurationMinutes  float64
	AvgQualityScore     float64
	NewPharmacies       int
}

// KPIs is the monthly indicator block.
type KPIs struct {
	Year               int     `json:"year"`
	Month              int     `json:"month"`
	VisitCount         int     `json:"visit_count"`
	MonthOverMonth     int     `json:"month_over_month"`
	CoverageRate       float64 `json:"coverage_rate"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	AvgQualityScore    float64 `json:"avg_quality_score"`
	NewPharmacies      int     `json:"new_pharmacies"`
}

// SeriesPoint is one bucket of the trailing visit series.
type SeriesPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RegionCount is one slice of the per-region pharmacy distribution.
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// TopProduct is one entry of the most-trained products ranking.
type TopProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Trainings int       `json:"trainings"`
}

// Charts bundles the dashboard chart payloads.
type Charts struct {
	VisitSeries []SeriesPoint `json:"visit_series"`
	Regions     []RegionCount `json:"regions"`
	TopProducts []TopProduct  `json:"top_products"`
}

// LiveStats is the global counter block.
type LiveStats struct {
	Pharmacies      int `json:"pharmacies"`
	Visits          int `json:"visits"`
	VisitsToday     int `json:"visits_today"`
	ActiveCampaigns int `json:"active_campaigns"`
	Products        int `json:"products"`
	Referents       int `json:"referents"`
}
