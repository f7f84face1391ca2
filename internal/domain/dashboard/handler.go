package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard/kpis", h.KPIs)
	api.GET("/dashboard/upcoming", h.Upcoming)
	api.GET("/dashboard/charts", h.Charts)
	api.GET("/dashboard/stats", h.Stats)
}

func (h *Handler) KPIs(c echo.Context) error {
	year, _ := strconv.Atoi(c.QueryParam("year"))
	month, _ := strconv.Atoi(c.QueryParam("month"))

	kpis, err := h.svc.KPIs(c.Request().Context(), year, time.Month(month))
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, kpis)
}

func (h *Handler) Upcoming(c echo.Context) error {
	pg := pagination.FromContext(c)
	window, _ := strconv.Atoi(c.QueryParam("window_days"))

	appts, total, err := h.svc.Upcoming(c.Request().Context(), window, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) Charts(c echo.Context) error {
	charts, err := h.svc.Charts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, charts)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
