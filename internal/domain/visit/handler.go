package visit

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/auth"
	"github.com/dermocrm/crm/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/visits", h.List)
	api.GET("/visits/:id", h.Get)
	api.POST("/visits", h.Create)
	api.DELETE("/visits/:id", h.Delete)
}

type createRequest struct {
	PharmacyID      uuid.UUID  `json:"pharmacy_id"`
	VisitDate       string     `json:"visit_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Objective       string     `json:"objective"`
	Notes           string     `json:"notes"`
	QualityScore    int        `json:"quality_score"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	Completed       bool       `json:"completed"`
	Products        []*Product `json:"products"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	visitDate, err := time.Parse("2006-01-02", req.VisitDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit_date, expected YYYY-MM-DD")
	}

	v := &Visit{
		PharmacyID:      req.PharmacyID,
		VisitDate:       visitDate,
		DurationMinutes: req.DurationMinutes,
		Objective:       req.Objective,
		Notes:           req.Notes,
		QualityScore:    req.QualityScore,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Completed:       req.Completed,
		Products:        req.Products,
		CreatedBy:       auth.UserIDFromContext(c.Request().Context()),
	}
	if err := h.svc.Create(c.Request().Context(), v); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f Filter
	if pid := c.QueryParam("pharmacy_id"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
		}
		f.PharmacyID = &id
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		f.From = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		f.To = &t
	}

	visits, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg.Limit, pg.Offset))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
