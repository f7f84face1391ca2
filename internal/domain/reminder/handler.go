package reminder

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dermocrm/crm/internal/platform/apperr"
	"github.com/dermocrm/crm/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/enrollments/:id/reminders", h.Create)
	g.GET("/enrollments/:id/reminders", h.List)
	g.GET("/reminders/:id", h.Get)
}

type createRequest struct {
	Type      string `json:"type"`
	TimeOfDay string `json:"time_of_day"`
	EmailTo   string `json:"email_to"`
	EmailCC   string `json:"email_cc"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	SendNow   bool   `json:"send_now"`
}

func (h *Handler) Create(c echo.Context) error {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid enrollment id")
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Create(c.Request().Context(), CreateRequest{
		EnrollmentID: enrollmentID,
		Type:         req.Type,
		TimeOfDay:    req.TimeOfDay,
		EmailTo:      req.EmailTo,
		EmailCC:      req.EmailCC,
		Subject:      req.Subject,
		Body:         req.Body,
		SendNow:      req.SendNow,
		Actor:        auth.UserIDFromContext(c.Request().Context()),
	})
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) List(c echo.Context) error {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid enrollment id")
	}
	reminders, err := h.svc.ListByEnrollment(c.Request().Context(), enrollmentID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	if reminders == nil {
		reminders = []*Reminder{}
	}
	return c.JSON(http.StatusOK, reminders)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reminder id")
	}
	rem, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, rem)
}
