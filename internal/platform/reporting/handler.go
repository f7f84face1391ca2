package reporting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dermocrm/crm/internal/platform/apperr"
)

// VisitReportFilter narrows the visits included in a visit activity report.
type VisitReportFilter struct {
	From       time.Time
	To         time.Time
	ReferentID *uuid.UUID
}

// DataSource supplies the report builders with their input. Implemented by
// the dashboard service.
type DataSource interface {
	VisitReportData(ctx context.Context, f VisitReportFilter) (*VisitReportData, error)
	CampaignReportData(ctx context.Context, campaignID uuid.UUID) (*CampaignReportData, error)
}

// Handler exposes the PDF report endpoints.
type Handler struct {
	source DataSource
}

func NewHandler(source DataSource) *Handler {
	return &Handler{source: source}
}

// RegisterRoutes registers the report routes on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/reports/visits", h.HandleVisitReport)
	g.GET("/reports/campaigns/:id", h.HandleCampaignReport)
}

// HandleVisitReport handles GET /reports/visits?from=...&to=...
func (h *Handler) HandleVisitReport(c echo.Context) error {
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return echo.NewHTTPError(http.StatusBadRequest, "to date precedes from date")
	}

	f := VisitReportFilter{From: from, To: to}
	if ref := c.QueryParam("referent_id"); ref != "" {
		id, err := uuid.Parse(ref)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid referent_id")
		}
		f.ReferentID = &id
	}

	data, err := h.source.VisitReportData(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}

	pdf, err := BuildVisitReport(*data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	filename := fmt.Sprintf("rapport-visites-%s-%s.pdf", from.Format("20060102"), to.Format("20060102"))
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// HandleCampaignReport handles GET /reports/campaigns/:id
func (h *Handler) HandleCampaignReport(c echo.Context) error {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}

	data, err := h.source.CampaignReportData(c.Request().Context(), campaignID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}

	pdf, err := BuildCampaignReport(*data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	filename := fmt.Sprintf("rapport-campagne-%s.pdf", campaignID)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
