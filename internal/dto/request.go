package dto

import (
	"errors"
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/service"
	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          *time.Time `json:"end_at"`
	VenueID        *string    `json:"venue_id"`
	VenueName      string     `json:"venue_name"`
	OrganizationID string     `json:"organization_id"`
	OrganizerID    string     `json:"organizer_id"`
	MaxAttendees   *int       `json:"max_attendees"`
	EventType      string     `json:"event_type"`
	Status         string     `json:"status"`
}

func (r *CreateEventRequest) Validate() error {
	if r.Title == "" || r.OrganizerID == "" {
		return errors.New("title and organizer_id are required")
	}
	if _, err := uuid.Parse(r.OrganizationID); err != nil {
		return errors.New("organization_id must be a UUID")
	}
	return validateSchedule(r.StartAt, r.EndAt, r.VenueID, r.MaxAttendees)
}

func (r *CreateEventRequest) ToModel() (*models.Event, error) {
	event := &models.Event{
		Title:          r.Title,
		Description:    r.Description,
		StartAt:        r.StartAt,
		EndAt:          r.EndAt,
		VenueID:        r.VenueID,
		VenueName:      r.VenueName,
		OrganizationID: r.OrganizationID,
		OrganizerID:    r.OrganizerID,
		MaxAttendees:   r.MaxAttendees,
	}
	var err error
	if r.EventType != "" {
		if event.EventType, err = models.ParseEventType(r.EventType); err != nil {
			return nil, err
		}
	}
	if r.Status != "" {
		if event.Status, err = models.ParseEventStatus(r.Status); err != nil {
			return nil, err
		}
	}
	return event, nil
}

type UpdateEventRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	VenueID      *string    `json:"venue_id"`
	VenueName    string     `json:"venue_name"`
	MaxAttendees *int       `json:"max_attendees"`
	EventType    string     `json:"event_type"`
	Status       string     `json:"status"`
}

func (r *UpdateEventRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	return validateSchedule(r.StartAt, r.EndAt, r.VenueID, r.MaxAttendees)
}

func (r *UpdateEventRequest) ToUpdate() (service.EventUpdate, error) {
	update := service.EventUpdate{
		Title:        r.Title,
		Description:  r.Description,
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
		VenueID:      r.VenueID,
		VenueName:    r.VenueName,
		MaxAttendees: r.MaxAttendees,
	}
	var err error
	if r.EventType != "" {
		if update.EventType, err = models.ParseEventType(r.EventType); err != nil {
			return service.EventUpdate{}, err
		}
	}
	if r.Status != "" {
		if update.Status, err = models.ParseEventStatus(r.Status); err != nil {
			return service.EventUpdate{}, err
		}
	}
	return update, nil
}

func validateSchedule(start time.Time, end *time.Time, venueID *string, capacity *int) error {
	if start.IsZero() {
		return errors.New("start_at is required")
	}
	if end != nil && !end.After(start) {
		return errors.New("end_at must be after start_at")
	}
	if venueID != nil {
		if _, err := uuid.Parse(*venueID); err != nil {
			return errors.New("venue_id must be a UUID")
		}
	}
	if capacity != nil && *capacity <= 0 {
		return errors.New("max_attendees must be > 0")
	}
	return nil
}

type InviteGuestRequest struct {
	UserID    string  `json:"user_id"`
	InvitedBy *string `json:"invited_by"`
	Role      string  `json:"role"`
	Notes     string  `json:"notes"`
}

func (r *InviteGuestRequest) ToRequest(eventID string) (service.InviteRequest, error) {
	if r.UserID == "" {
		return service.InviteRequest{}, errors.New("user_id is required")
	}
	req := service.InviteRequest{
		EventID:   eventID,
		UserID:    r.UserID,
		InvitedBy: r.InvitedBy,
		Notes:     r.Notes,
	}
	if r.Role != "" {
		role, err := models.ParseGuestRole(r.Role)
		if err != nil {
			return service.InviteRequest{}, err
		}
		req.Role = role
	}
	return req, nil
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type UpdateRsvpRequest struct {
	Status string `json:"status"`
}
