package models

import (
	"fmt"
	"strings"
	"time"
)

type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventCancelled EventStatus = "CANCELLED"
	EventCompleted EventStatus = "COMPLETED"
)

// BookingCancelled is the booking status of a released venue booking.
const BookingCancelled = "CANCELLED"

type EventType string

const (
	EventPrivate EventType = "PRIVATE"
	EventPublic  EventType = "PUBLIC"
)

type Event struct {
	ID               string      `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string      `gorm:"not null" json:"title"`
	Description      string      `gorm:"type:varchar(1000)" json:"description"`
	StartAt          time.Time   `gorm:"not null;index" json:"start_at"`
	EndAt            *time.Time  `json:"end_at,omitempty"`
	VenueID          *string     `gorm:"type:uuid;index" json:"venue_id,omitempty"`
	VenueName        string      `json:"venue_name"`
	OrganizationID   string      `gorm:"type:uuid;not null;index" json:"organization_id"`
	OrganizerID      string      `gorm:"not null" json:"organizer_id"`
	MaxAttendees     *int        `json:"max_attendees,omitempty"`
	CurrentAttendees int         `gorm:"not null;default:0;check:current_attendees >= 0" json:"current_attendees"`
	EventType        EventType   `gorm:"type:varchar(20);not null;default:'PRIVATE'" json:"event_type"`
	Status           EventStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	BookingID        *string     `json:"booking_id,omitempty"`
	BookingStatus    string      `json:"booking_status,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// HasBooking reports whether the event holds a venue booking that has not
// been cancelled.
func (e *Event) HasBooking() bool {
	return e.BookingID != nil && *e.BookingID != "" && !strings.EqualFold(e.BookingStatus, BookingCancelled)
}

// HasVenueSlot reports whether the event carries everything a venue reservation needs.
func (e *Event) HasVenueSlot() bool {
	return e.VenueID != nil && *e.VenueID != "" && !e.StartAt.IsZero() && e.EndAt != nil && !e.EndAt.IsZero()
}

func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(s); st {
	case EventDraft, EventPublished, EventCancelled, EventCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown event status %q", s)
}

func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventPrivate, EventPublic:
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}
