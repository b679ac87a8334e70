package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/messaging"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/repository"
	"github.com/google/uuid"
)

type InviteRequest struct {
	EventID   string
	UserID    string
	InvitedBy *string
	Role      models.GuestRole
	Notes     string
}

type GuestService interface {
	InviteGuest(ctx context.Context, req InviteRequest) (*models.GuestEntry, error)
	RemoveGuest(ctx context.Context, eventID, userID, removedBy string) error
	GetGuest(ctx context.Context, eventID, userID string) (*models.GuestEntry, error)
	UpdateRole(ctx context.Context, eventID, userID string, role models.GuestRole) (*models.GuestEntry, error)
	UpdateNotes(ctx context.Context, eventID, userID, notes string) (*models.GuestEntry, error)

	UpdateRsvp(ctx context.Context, eventID, userID string, status models.RsvpStatus) (*models.GuestEntry, error)
	AcceptInvitation(ctx context.Context, eventID, userID string) (*models.GuestEntry, error)
	DeclineInvitation(ctx context.Context, eventID, userID string) (*models.GuestEntry, error)
	CheckIn(ctx context.Context, eventID, userID string) (*models.GuestEntry, error)

	ListByEvent(ctx context.Context, eventID string) ([]models.GuestEntry, error)
	ListByUser(ctx context.Context, userID string) ([]models.GuestEntry, error)
	ListByRole(ctx context.Context, eventID string, role models.GuestRole) ([]models.GuestEntry, error)
	ListByStatus(ctx context.Context, eventID string, status models.RsvpStatus) ([]models.GuestEntry, error)
	ListCheckedIn(ctx context.Context, eventID string) ([]models.GuestEntry, error)
	CountGuests(ctx context.Context, eventID string) (int64, error)
	CountByStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error)
	CountCheckedIn(ctx context.Context, eventID string) (int64, error)
	IsInvited(ctx context.Context, eventID, userID string) (bool, error)
}

type guestService struct {
	guests     repository.GuestRepository
	events     repository.EventRepository
	reconciler Reconciler
	publisher  Publisher
	trackRsvp  bool
	now        func() time.Time
}

// NewGuestService wires the invitation manager. With StrategyDelta the
// RSVP and check-in operations are owned by the guest service and fail
// with ErrRsvpNotTracked here.
func NewGuestService(guests repository.GuestRepository, events repository.EventRepository, reconciler Reconciler, publisher Publisher, strategy CountStrategy) GuestService {
	return &guestService{
		guests:     guests,
		events:     events,
		reconciler: reconciler,
		publisher:  publisher,
		trackRsvp:  strategy != StrategyDelta,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// InviteGuest checks for an existing entry first, but the unique index on
// (event_id, user_id) decides concurrent races; both paths yield ErrAlreadyInvited.
func (s *guestService) InviteGuest(ctx context.Context, req InviteRequest) (*models.GuestEntry, error) {
	event, err := s.events.FindByID(ctx, req.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", req.EventID, err)
	}

	exists, err := s.guests.Exists(ctx, req.EventID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("check invitation: %w", err)
	}
	if exists {
		return nil, ErrAlreadyInvited
	}

	role := req.Role
	if role == "" {
		role = models.RoleAttendee
	}
	guest := &models.GuestEntry{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		UserID:     req.UserID,
		InvitedBy:  req.InvitedBy,
		Role:       role,
		RsvpStatus: models.RsvpPending,
		Notes:      req.Notes,
		InvitedAt:  s.now(),
	}
	if err := s.guests.Create(ctx, guest); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInvited
		}
		return nil, fmt.Errorf("create guest entry: %w", err)
	}
	log.Printf("[GuestService] user %s invited to event %s as %s", guest.UserID, guest.EventID, guest.Role)

	invited := messaging.GuestInvited{
		EventID:        guest.EventID,
		UserID:         guest.UserID,
		OrganizationID: event.OrganizationID,
		InvitedAt:      guest.InvitedAt,
	}
	if guest.InvitedBy != nil {
		invited.InvitedBy = *guest.InvitedBy
	}
	s.emit(ctx, messaging.TopicGuestInvited, invited)
	return guest, nil
}

func (s *guestService) RemoveGuest(ctx context.Context, eventID, userID, removedBy string) error {
	guest, err := s.load(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if err := s.guests.Delete(ctx, guest); err != nil {
		return fmt.Errorf("delete guest entry %s: %w", guest.ID, err)
	}
	log.Printf("[GuestService] user %s removed from event %s", userID, eventID)

	s.emit(ctx, messaging.TopicGuestRemoved, messaging.GuestRemoved{
		EventID:   eventID,
		UserID:    userID,
		RemovedBy: removedBy,
		RemovedAt: s.now(),
	})

	if s.trackRsvp && guest.RsvpStatus == models.RsvpAccepted {
		s.recount(ctx, eventID)
	}
	return nil
}

func (s *guestService) GetGuest(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	return s.load(ctx, eventID, userID)
}

func (s *guestService) UpdateRole(ctx context.Context, eventID, userID string, role models.GuestRole) (*models.GuestEntry, error) {
	return s.mutate(ctx, eventID, userID, func(g *models.GuestEntry) { g.Role = role })
}

func (s *guestService) UpdateNotes(ctx context.Context, eventID, userID, notes string) (*models.GuestEntry, error) {
	return s.mutate(ctx, eventID, userID, func(g *models.GuestEntry) { g.Notes = notes })
}

// UpdateRsvp persists the response, notifies the bus and recounts the
// event's attendees. A failed recount is logged; the RSVP itself stands.
func (s *guestService) UpdateRsvp(ctx context.Context, eventID, userID string, status models.RsvpStatus) (*models.GuestEntry, error) {
	if !s.trackRsvp {
		return nil, ErrRsvpNotTracked
	}

	var wasAccepted bool
	guest, err := s.mutate(ctx, eventID, userID, func(g *models.GuestEntry) {
		wasAccepted = g.RsvpStatus == models.RsvpAccepted
		respondedAt := s.now()
		g.RsvpStatus = status
		g.RespondedAt = &respondedAt
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[GuestService] user %s rsvp %s for event %s", userID, status, eventID)

	s.emit(ctx, messaging.TopicRsvpUpdated, messaging.RsvpChange{
		EventID:     eventID,
		UserID:      userID,
		Status:      string(status),
		WasAccepted: wasAccepted,
	})
	s.recount(ctx, eventID)
	return guest, nil
}

func (s *guestService) AcceptInvitation(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	return s.UpdateRsvp(ctx, eventID, userID, models.RsvpAccepted)
}

func (s *guestService) DeclineInvitation(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	return s.UpdateRsvp(ctx, eventID, userID, models.RsvpDeclined)
}

// CheckIn requires an accepted invitation. Repeating it keeps the first
// check-in time.
func (s *guestService) CheckIn(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	if !s.trackRsvp {
		return nil, ErrRsvpNotTracked
	}

	guest, err := s.load(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if guest.RsvpStatus != models.RsvpAccepted {
		return nil, ErrCheckInRequiresAcceptance
	}

	if !guest.CheckedIn || guest.CheckedInAt == nil {
		checkedInAt := s.now()
		guest.CheckedIn = true
		guest.CheckedInAt = &checkedInAt
		if err := s.save(ctx, guest); err != nil {
			return nil, err
		}
	}

	s.emit(ctx, messaging.TopicGuestCheckedIn, messaging.GuestCheckedIn{
		EventID:     eventID,
		UserID:      userID,
		CheckedInAt: *guest.CheckedInAt,
	})
	return guest, nil
}

func (s *guestService) ListByEvent(ctx context.Context, eventID string) ([]models.GuestEntry, error) {
	return s.guests.FindByEvent(ctx, eventID)
}

func (s *guestService) ListByUser(ctx context.Context, userID string) ([]models.GuestEntry, error) {
	return s.guests.FindByUser(ctx, userID)
}

func (s *guestService) ListByRole(ctx context.Context, eventID string, role models.GuestRole) ([]models.GuestEntry, error) {
	return s.guests.FindByEventAndRole(ctx, eventID, role)
}

func (s *guestService) ListByStatus(ctx context.Context, eventID string, status models.RsvpStatus) ([]models.GuestEntry, error) {
	return s.guests.FindByEventAndStatus(ctx, eventID, status)
}

func (s *guestService) ListCheckedIn(ctx context.Context, eventID string) ([]models.GuestEntry, error) {
	return s.guests.FindCheckedIn(ctx, eventID)
}

func (s *guestService) CountGuests(ctx context.Context, eventID string) (int64, error) {
	return s.guests.CountByEvent(ctx, eventID)
}

func (s *guestService) CountByStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error) {
	return s.guests.CountByEventAndStatus(ctx, eventID, status)
}

func (s *guestService) CountCheckedIn(ctx context.Context, eventID string) (int64, error) {
	return s.guests.CountCheckedIn(ctx, eventID)
}

func (s *guestService) IsInvited(ctx context.Context, eventID, userID string) (bool, error) {
	return s.guests.Exists(ctx, eventID, userID)
}

func (s *guestService) load(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	guest, err := s.guests.FindByEventAndUser(ctx, eventID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find guest %s of event %s: %w", userID, eventID, err)
	}
	return guest, nil
}

func (s *guestService) mutate(ctx context.Context, eventID, userID string, apply func(*models.GuestEntry)) (*models.GuestEntry, error) {
	guest, err := s.load(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	apply(guest)
	if err := s.save(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// save writes guest back. An entry removed since it was loaded is not
// recreated and reports ErrGuestNotFound.
func (s *guestService) save(ctx context.Context, guest *models.GuestEntry) error {
	err := s.guests.Update(ctx, guest)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrGuestNotFound
	}
	if err != nil {
		return fmt.Errorf("update guest %s: %w", guest.ID, err)
	}
	return nil
}

func (s *guestService) recount(ctx context.Context, eventID string) {
	if s.reconciler == nil {
		return
	}
	if err := s.reconciler.Recompute(ctx, eventID); err != nil {
		log.Printf("[GuestService] attendee recount for event %s failed: %v", eventID, err)
	}
}

func (s *guestService) emit(ctx context.Context, topic string, payload any) {
	publish(ctx, s.publisher, "GuestService", topic, payload)
}
