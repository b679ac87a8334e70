// Package messaging defines the event bus topics shared with the guest
// service and the JSON payload carried on each of them.
package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TopicEventCreated   = "event-created"
	TopicEventUpdated   = "event-updated"
	TopicEventDeleted   = "event-deleted"
	TopicEventPublished = "event-published"
	TopicEventCancelled = "event-cancelled"

	TopicGuestInvited   = "guest-invited"
	TopicGuestRemoved   = "guest-removed"
	TopicGuestCheckedIn = "guest-checked-in"

	TopicRsvpUpdated  = "rsvp-updated"
	TopicRsvpAccepted = "rsvp-accepted"
	TopicRsvpDeclined = "rsvp-declined"
)

// EventSummary is published on event-created, event-updated and event-published.
type EventSummary struct {
	EventID string `json:"eventId"`
	Title   string `json:"title,omitempty"`
	Status  string `json:"status,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type EventDeleted struct {
	EventID   string    `json:"eventId"`
	DeletedAt time.Time `json:"deletedAt"`
}

type EventCancelled struct {
	EventID     string    `json:"eventId"`
	CancelledAt time.Time `json:"cancelledAt"`
}

type GuestInvited struct {
	EventID        string    `json:"eventId"`
	UserID         string    `json:"userId"`
	InvitedBy      string    `json:"invitedBy,omitempty"`
	OrganizationID string    `json:"organizationId,omitempty"`
	InvitedAt      time.Time `json:"invitedAt"`
}

type GuestRemoved struct {
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	RemovedBy string    `json:"removedBy,omitempty"`
	RemovedAt time.Time `json:"removedAt"`
}

type GuestCheckedIn struct {
	EventID     string    `json:"eventId"`
	UserID      string    `json:"userId"`
	CheckedInAt time.Time `json:"checkedInAt"`
}

// RsvpChange is the payload of rsvp-updated, rsvp-accepted and rsvp-declined.
type RsvpChange struct {
	EventID     string `json:"eventId"`
	UserID      string `json:"userId,omitempty"`
	Status      string `json:"status,omitempty"`
	WasAccepted bool   `json:"wasAccepted,omitempty"`
}

var ErrMalformedPayload = errors.New("malformed payload")

// DecodeRsvpChange parses an RSVP notification. Only eventId is mandatory and
// it must be a UUID.
func DecodeRsvpChange(body []byte) (RsvpChange, error) {
	var p RsvpChange
	if err := json.Unmarshal(body, &p); err != nil {
		return RsvpChange{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.EventID == "" {
		return RsvpChange{}, fmt.Errorf("%w: missing eventId", ErrMalformedPayload)
	}
	if _, err := uuid.Parse(p.EventID); err != nil {
		return RsvpChange{}, fmt.Errorf("%w: eventId %q", ErrMalformedPayload, p.EventID)
	}
	return p, nil
}
