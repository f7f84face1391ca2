package campaign

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
	api.GET("/campaigns", h.List)
	api.GET("/campaigns/:id", h.Get)
	api.POST("/campaigns", h.Create)
	api.PUT("/campaigns/:id", h.Update)
	api.DELETE("/campaigns/:id", h.Delete)
}

// createRequest is the JSON body for POST /campaigns.
type createRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	Status      string      `json:"status"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
	PharmacyIDs []uuid.UUID `json:"pharmacy_ids"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
	}

	camp := &Campaign{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      req.Status,
		CreatedBy:   auth.UserIDFromContext(c.Request().Context()),
	}

	in := CreateInput{Campaign: camp, ProductIDs: req.ProductIDs, PharmacyIDs: req.PharmacyIDs}
	if err := h.svc.Create(c.Request().Context(), in); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, camp)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	camp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, camp)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	campaigns, total, err := h.svc.List(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(campaigns, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
	}

	camp := &Campaign{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      req.Status,
	}
	if camp.Status == "" {
		camp.Status = StatusDraft
	}

	if err := h.svc.Update(c.Request().Context(), camp, req.ProductIDs); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, camp)
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
