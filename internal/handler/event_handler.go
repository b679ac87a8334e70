package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/dto"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.GET("/public", h.ListPublic)
	g.GET("/upcoming", h.ListUpcoming)
	g.GET("/past", h.ListPast)
	g.GET("/range", h.ListByDateRange)
	g.GET("/venue/:venueId", h.ListByVenue)
	g.GET("/:id", h.GetEvent)
	g.PUT("/:id", h.UpdateEvent)
	g.DELETE("/:id", h.DeleteEvent)
	g.POST("/:id/reserve-venue", h.ReserveVenue)
	g.POST("/:id/publish", h.PublishEvent)
	g.POST("/:id/cancel", h.CancelEvent)
	g.POST("/:id/complete", h.CompleteEvent)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	event, err := req.ToModel()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.CreateEvent(c.Request().Context(), event); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	event, err := h.svc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// ListEvents filters by the optional organization_id and status query params.
func (h *EventHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	orgID := c.QueryParam("organization_id")

	var status models.EventStatus
	if s := c.QueryParam("status"); s != "" {
		parsed, err := models.ParseEventStatus(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		status = parsed
	}

	var (
		events []models.Event
		err    error
	)
	switch {
	case orgID != "" && status != "":
		events, err = h.svc.ListByOrganizationAndStatus(ctx, orgID, status)
	case orgID != "":
		events, err = h.svc.ListByOrganization(ctx, orgID)
	case status != "":
		events, err = h.svc.ListByStatus(ctx, status)
	default:
		events, err = h.svc.ListEvents(ctx)
	}
	return respondEvents(c, events, err)
}

func (h *EventHandler) ListPublic(c echo.Context) error {
	events, err := h.svc.ListPublic(c.Request().Context())
	return respondEvents(c, events, err)
}

func (h *EventHandler) ListUpcoming(c echo.Context) error {
	events, err := h.svc.ListUpcoming(c.Request().Context())
	return respondEvents(c, events, err)
}

func (h *EventHandler) ListPast(c echo.Context) error {
	events, err := h.svc.ListPast(c.Request().Context())
	return respondEvents(c, events, err)
}

func (h *EventHandler) ListByDateRange(c echo.Context) error {
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be an RFC3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end must be an RFC3339 timestamp")
	}
	if end.Before(start) {
		return echo.NewHTTPError(http.StatusBadRequest, "end must not be before start")
	}
	events, err := h.svc.ListByDateRange(c.Request().Context(), start, end)
	return respondEvents(c, events, err)
}

func (h *EventHandler) ListByVenue(c echo.Context) error {
	venueID := c.Param("venueId")
	if _, err := uuid.Parse(venueID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid venue id")
	}
	events, err := h.svc.ListByVenue(c.Request().Context(), venueID)
	return respondEvents(c, events, err)
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	update, err := req.ToUpdate()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.svc.UpdateEvent(c.Request().Context(), id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteEvent(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) ReserveVenue(c echo.Context) error {
	return h.transition(c, h.svc.ReserveVenue)
}

func (h *EventHandler) PublishEvent(c echo.Context) error {
	return h.transition(c, h.svc.PublishEvent)
}

func (h *EventHandler) CancelEvent(c echo.Context) error {
	return h.transition(c, h.svc.CancelEvent)
}

func (h *EventHandler) CompleteEvent(c echo.Context) error {
	return h.transition(c, h.svc.CompleteEvent)
}

func (h *EventHandler) transition(c echo.Context, op func(ctx context.Context, id string) (*models.Event, error)) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	event, err := op(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func eventID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	return id, nil
}

func respondEvents(c echo.Context, events []models.Event, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}
