package models

import (
	"fmt"
	"time"
)

type GuestRole string

const (
	RoleAttendee GuestRole = "ATTENDEE"
	RoleSpeaker  GuestRole = "SPEAKER"
	RoleVIP      GuestRole = "VIP"
	RoleStaff    GuestRole = "STAFF"
)

type RsvpStatus string

const (
	RsvpPending  RsvpStatus = "PENDING"
	RsvpAccepted RsvpStatus = "ACCEPTED"
	RsvpDeclined RsvpStatus = "DECLINED"
	RsvpMaybe    RsvpStatus = "MAYBE"
)

// GuestEntry is one user's invitation to one event. The (event_id, user_id)
// unique index is the authority on "already invited".
type GuestEntry struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     string     `gorm:"type:uuid;not null;uniqueIndex:idx_guest_event_user" json:"event_id"`
	UserID      string     `gorm:"not null;uniqueIndex:idx_guest_event_user;index" json:"user_id"`
	InvitedBy   *string    `json:"invited_by,omitempty"`
	Role        GuestRole  `gorm:"type:varchar(20);not null;default:'ATTENDEE'" json:"role"`
	RsvpStatus  RsvpStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"rsvp_status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CheckedIn   bool       `gorm:"not null;default:false" json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	Notes       string     `gorm:"type:varchar(1000)" json:"notes"`
	InvitedAt   time.Time  `gorm:"not null" json:"invited_at"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

func ParseGuestRole(s string) (GuestRole, error) {
	switch r := GuestRole(s); r {
	case RoleAttendee, RoleSpeaker, RoleVIP, RoleStaff:
		return r, nil
	}
	return "", fmt.Errorf("unknown guest role %q", s)
}

func ParseRsvpStatus(s string) (RsvpStatus, error) {
	switch st := RsvpStatus(s); st {
	case RsvpPending, RsvpAccepted, RsvpDeclined, RsvpMaybe:
		return st, nil
	}
	return "", fmt.Errorf("unknown rsvp status %q", s)
}
