package dto

import (
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
)

type EventResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	StartAt          time.Time  `json:"start_at"`
	EndAt            *time.Time `json:"end_at,omitempty"`
	VenueID          *string    `json:"venue_id,omitempty"`
	VenueName        string     `json:"venue_name,omitempty"`
	OrganizationID   string     `json:"organization_id"`
	OrganizerID      string     `json:"organizer_id"`
	MaxAttendees     *int       `json:"max_attendees,omitempty"`
	CurrentAttendees int        `json:"current_attendees"`
	EventType        string     `json:"event_type"`
	Status           string     `json:"status"`
	BookingID        *string    `json:"booking_id,omitempty"`
	BookingStatus    string     `json:"booking_status,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type GuestResponse struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	UserID      string     `json:"user_id"`
	InvitedBy   *string    `json:"invited_by,omitempty"`
	Role        string     `json:"role"`
	RsvpStatus  string     `json:"rsvp_status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	InvitedAt   time.Time  `json:"invited_at"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type InvitedResponse struct {
	Invited bool `json:"invited"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		StartAt:          e.StartAt,
		EndAt:            e.EndAt,
		VenueID:          e.VenueID,
		VenueName:        e.VenueName,
		OrganizationID:   e.OrganizationID,
		OrganizerID:      e.OrganizerID,
		MaxAttendees:     e.MaxAttendees,
		CurrentAttendees: e.CurrentAttendees,
		EventType:        string(e.EventType),
		Status:           string(e.Status),
		BookingID:        e.BookingID,
		BookingStatus:    e.BookingStatus,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func ToEventResponses(events []models.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = ToEventResponse(&events[i])
	}
	return resp
}

func ToGuestResponse(g *models.GuestEntry) GuestResponse {
	return GuestResponse{
		ID:          g.ID,
		EventID:     g.EventID,
		UserID:      g.UserID,
		InvitedBy:   g.InvitedBy,
		Role:        string(g.Role),
		RsvpStatus:  string(g.RsvpStatus),
		RespondedAt: g.RespondedAt,
		CheckedIn:   g.CheckedIn,
		CheckedInAt: g.CheckedInAt,
		Notes:       g.Notes,
		InvitedAt:   g.InvitedAt,
	}
}

func ToGuestResponses(guests []models.GuestEntry) []GuestResponse {
	resp := make([]GuestResponse, len(guests))
	for i := range guests {
		resp[i] = ToGuestResponse(&guests[i])
	}
	return resp
}
