package pharmacy

import (
	"net/http"

	"github.com/google/uuid"
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
	api.GET("/pharmacies", h.List)
	api.GET("/pharmacies/map", h.MapPoints)
	api.GET("/pharmacies/:id", h.Get)
	api.POST("/pharmacies", h.Create)
	api.PUT("/pharmacies/:id", h.Update)
	api.DELETE("/pharmacies/:id", h.Archive)

	api.GET("/pharmacies/:id/contacts", h.ListContacts)
	api.POST("/pharmacies/:id/contacts", h.AddContact)
	api.DELETE("/pharmacies/:id/contacts/:contactID", h.RemoveContact)

	api.GET("/pharmacies/:id/agents", h.ListAgents)
	api.POST("/pharmacies/:id/agents", h.AddAgent)
	api.DELETE("/pharmacies/:id/agents/:agentID", h.RemoveAgent)
}

func (h *Handler) Create(c echo.Context) error {
	var p Pharmacy
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Create(c.Request().Context(), &p)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	f := Filter{
		Search:     c.QueryParam("q"),
		Region:     c.QueryParam("region"),
		ActiveOnly: c.QueryParam("active") == "true",
	}
	if refID := c.QueryParam("referent_id"); refID != "" {
		id, err := uuid.Parse(refID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid referent_id")
		}
		f.ReferentID = &id
	}

	pharmacies, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(pharmacies, total, pg.Limit, pg.Offset))
}

func (h *Handler) MapPoints(c echo.Context) error {
	points, err := h.svc.MapPoints(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, points)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Pharmacy
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	result, err := h.svc.Update(c.Request().Context(), &p)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Archive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Archive(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddContact(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var contact Contact
	if err := c.Bind(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	contact.PharmacyID = pharmacyID
	if err := h.svc.AddContact(c.Request().Context(), &contact); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, contact)
}

func (h *Handler) ListContacts(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	contacts, err := h.svc.ListContacts(c.Request().Context(), pharmacyID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *Handler) RemoveContact(c echo.Context) error {
	contactID, err := uuid.Parse(c.Param("contactID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}
	if err := h.svc.RemoveContact(c.Request().Context(), contactID); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddAgent(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var agent Agent
	if err := c.Bind(&agent); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	agent.PharmacyID = pharmacyID
	if err := h.svc.AddAgent(c.Request().Context(), &agent); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, agent)
}

func (h *Handler) ListAgents(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	agents, err := h.svc.ListAgents(c.Request().Context(), pharmacyID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, agents)
}

func (h *Handler) RemoveAgent(c echo.Context) error {
	agentID, err := uuid.Parse(c.Param("agentID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid agent id")
	}
	if err := h.svc.RemoveAgent(c.Request().Context(), agentID); err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
