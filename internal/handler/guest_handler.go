package handler

import (
	"context"
	"net/http"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/dto"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/service"
	"github.com/labstack/echo/v4"
)

type GuestHandler struct {
	svc service.GuestService
}

func NewGuestHandler(svc service.GuestService) *GuestHandler {
	return &GuestHandler{svc: svc}
}

// RegisterRoutes mounts the guest list of one event; g must carry the :id
// event parameter.
func (h *GuestHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.InviteGuest)
	g.GET("", h.ListGuests)
	g.GET("/count", h.CountGuests)
	g.GET("/checked-in", h.ListCheckedIn)
	g.GET("/:userId", h.GetGuest)
	g.GET("/:userId/invited", h.IsInvited)
	g.DELETE("/:userId", h.RemoveGuest)
	g.PUT("/:userId/role", h.UpdateRole)
	g.PUT("/:userId/notes", h.UpdateNotes)
	g.PUT("/:userId/rsvp", h.UpdateRsvp)
	g.POST("/:userId/accept", h.AcceptInvitation)
	g.POST("/:userId/decline", h.DeclineInvitation)
	g.POST("/:userId/check-in", h.CheckIn)
}

// RegisterUserRoutes mounts per-user lookups; g must carry the :userId parameter.
func (h *GuestHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/invitations", h.ListByUser)
}

func (h *GuestHandler) InviteGuest(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	var body dto.InviteGuestRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req, err := body.ToRequest(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	guest, err := h.svc.InviteGuest(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToGuestResponse(guest))
}

// ListGuests filters by the optional role or status query param.
func (h *GuestHandler) ListGuests(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var guests []models.GuestEntry
	switch {
	case c.QueryParam("role") != "":
		role, perr := models.ParseGuestRole(c.QueryParam("role"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, perr.Error())
		}
		guests, err = h.svc.ListByRole(ctx, id, role)
	case c.QueryParam("status") != "":
		status, perr := models.ParseRsvpStatus(c.QueryParam("status"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, perr.Error())
		}
		guests, err = h.svc.ListByStatus(ctx, id, status)
	default:
		guests, err = h.svc.ListByEvent(ctx, id)
	}
	return respondGuests(c, guests, err)
}

func (h *GuestHandler) ListCheckedIn(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	guests, err := h.svc.ListCheckedIn(c.Request().Context(), id)
	return respondGuests(c, guests, err)
}

func (h *GuestHandler) ListByUser(c echo.Context) error {
	guests, err := h.svc.ListByUser(c.Request().Context(), c.Param("userId"))
	return respondGuests(c, guests, err)
}

// CountGuests counts all guests, or only those with ?status=, or only
// checked-in guests with ?checked_in=true.
func (h *GuestHandler) CountGuests(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var count int64
	switch {
	case c.QueryParam("checked_in") == "true":
		count, err = h.svc.CountCheckedIn(ctx, id)
	case c.QueryParam("status") != "":
		status, perr := models.ParseRsvpStatus(c.QueryParam("status"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, perr.Error())
		}
		count, err = h.svc.CountByStatus(ctx, id, status)
	default:
		count, err = h.svc.CountGuests(ctx, id)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

func (h *GuestHandler) GetGuest(c echo.Context) error {
	return h.guestOp(c, h.svc.GetGuest)
}

func (h *GuestHandler) IsInvited(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	invited, err := h.svc.IsInvited(c.Request().Context(), id, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.InvitedResponse{Invited: invited})
}

func (h *GuestHandler) RemoveGuest(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveGuest(c.Request().Context(), id, c.Param("userId"), c.QueryParam("removed_by")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GuestHandler) UpdateRole(c echo.Context) error {
	var req dto.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	role, err := models.ParseGuestRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.guestOp(c, func(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
		return h.svc.UpdateRole(ctx, eventID, userID, role)
	})
}

func (h *GuestHandler) UpdateNotes(c echo.Context) error {
	var req dto.UpdateNotesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.guestOp(c, func(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
		return h.svc.UpdateNotes(ctx, eventID, userID, req.Notes)
	})
}

func (h *GuestHandler) UpdateRsvp(c echo.Context) error {
	var req dto.UpdateRsvpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	status, err := models.ParseRsvpStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.guestOp(c, func(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
		return h.svc.UpdateRsvp(ctx, eventID, userID, status)
	})
}

func (h *GuestHandler) AcceptInvitation(c echo.Context) error {
	return h.guestOp(c, h.svc.AcceptInvitation)
}

func (h *GuestHandler) DeclineInvitation(c echo.Context) error {
	return h.guestOp(c, h.svc.DeclineInvitation)
}

func (h *GuestHandler) CheckIn(c echo.Context) error {
	return h.guestOp(c, h.svc.CheckIn)
}

func (h *GuestHandler) guestOp(c echo.Context, op func(ctx context.Context, eventID, userID string) (*models.GuestEntry, error)) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}
	guest, err := op(c.Request().Context(), id, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToGuestResponse(guest))
}

func respondGuests(c echo.Context, guests []models.GuestEntry, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToGuestResponses(guests))
}
