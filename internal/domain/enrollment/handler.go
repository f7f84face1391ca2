package enrollment

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
	api.GET("/campaigns/:campaignID/enrollments", h.List)
	api.POST("/campaigns/:campaignID/enrollments", h.AddPharmacy)
	api.DELETE("/campaigns/:campaignID/enrollments/:id", h.RemovePharmacy)
	api.PATCH("/campaigns/:campaignID/enrollments/status", h.Transition)
	api.GET("/campaigns/:campaignID/calendar", h.Calendar)
	api.GET("/campaigns/:campaignID/map", h.MapFeed)

	api.GET("/enrollments/:id", h.Get)
	api.GET("/enrollments/:id/status-changes", h.StatusLog)
}

// transitionRequest is the JSON body for PATCH .../enrollments/status.
type transitionRequest struct {
	EnrollmentID  *uuid.UUID `json:"enrollment_id"`
	PharmacyID    *uuid.UUID `json:"pharmacy_id"`
	Status        string     `json:"status"`
	Comment       string     `json:"comment"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	CompletedDate *time.Time `json:"completed_date"`
}

func (h *Handler) Transition(c echo.Context) error {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}

	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target, err := ParseStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}

	result, err := h.svc.Transition(c.Request().Context(), TransitionRequest{
		EnrollmentID: req.EnrollmentID,
		PharmacyID:   req.PharmacyID,
		CampaignID:   campaignID,
		Input: TransitionInput{
			Target:        target,
			Comment:       req.Comment,
			ScheduledDate: req.ScheduledDate,
			CompletedDate: req.CompletedDate,
		},
		Actor: auth.UserIDFromContext(c.Request().Context()),
	})
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) AddPharmacy(c echo.Context) error {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}
	var req struct {
		PharmacyID uuid.UUID `json:"pharmacy_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PharmacyID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "pharmacy_id is required")
	}

	enr, err := h.svc.AddPharmacy(c.Request().Context(), campaignID, req.PharmacyID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, enr)
}

func (h *Handler) RemovePharmacy(c echo.Context) error {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid enrollment id")
	}
	if err := h.svc.RemovePharmacy(c.Request().Context(), campaignID, id); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	enr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, enr)
}

func (h *Handler) List(c echo.Context) error {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}
	pg := pagination.FromContext(c)

	enrollments, total, err := h.svc.ListByCampaign(c.Request().Context(), campaignID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(enrollments, total, pg.Limit, pg.Offset))
}

func (h *Handler) StatusLog(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	changes, err := h.svc.StatusLog(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, changes)
}

func (h *Handler) Calendar(c echo.Context) error {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}

	if date := c.QueryParam("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
		events, err := h.svc.ByDate(c.Request().Context(), campaignID, day)
		if err != nil {
			return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, events)
	}

	events, err := h.svc.Calendar(c.Request().Context(), campaignID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) MapFeed(c echo.Context) error {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}
	events, err := h.svc.MapFeed(c.Request().Context(), campaignID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, events)
}
