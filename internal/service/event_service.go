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
	"github.com/Eursukkul/booking-microservice/event-manager/pkg/bookingrpc"
	"github.com/google/uuid"
)

// Publisher emits a JSON notification on the event bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// BookingClient is the venue booking service as seen by the orchestrator.
type BookingClient interface {
	CheckAvailability(ctx context.Context, venueID string, start, end time.Time) (bool, error)
	CreateBooking(ctx context.Context, req *bookingrpc.CreateBookingRequest) (*bookingrpc.CreateBookingResponse, error)
	CancelBooking(ctx context.Context, bookingID string) (*bookingrpc.CancelBookingResponse, error)
}

// EventUpdate carries the mutable fields of an event. Empty EventType or
// Status keep the stored value; every other field overwrites it.
type EventUpdate struct {
	Title        string
	Description  string
	StartAt      time.Time
	EndAt        *time.Time
	VenueID      *string
	VenueName    string
	MaxAttendees *int
	EventType    models.EventType
	Status       models.EventStatus
}

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id string, update EventUpdate) (*models.Event, error)
	ReserveVenue(ctx context.Context, id string) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	PublishEvent(ctx context.Context, id string) (*models.Event, error)
	CancelEvent(ctx context.Context, id string) (*models.Event, error)
	CompleteEvent(ctx context.Context, id string) (*models.Event, error)

	ListByOrganization(ctx context.Context, organizationID string) ([]models.Event, error)
	ListByOrganizationAndStatus(ctx context.Context, organizationID string, status models.EventStatus) ([]models.Event, error)
	ListByStatus(ctx context.Context, status models.EventStatus) ([]models.Event, error)
	ListPublic(ctx context.Context) ([]models.Event, error)
	ListUpcoming(ctx context.Context) ([]models.Event, error)
	ListPast(ctx context.Context) ([]models.Event, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error)
	ListByVenue(ctx context.Context, venueID string) ([]models.Event, error)
}

type eventService struct {
	repo      repository.EventRepository
	booking   BookingClient
	publisher Publisher
	currency  string
	now       func() time.Time
}

// NewEventService wires the orchestrator. A nil publisher disables bus
// notifications; a nil booking client makes every reservation fail as
// upstream unavailable.
func NewEventService(repo repository.EventRepository, booking BookingClient, publisher Publisher, currency string) EventService {
	if currency == "" {
		currency = "EUR"
	}
	return &eventService{
		repo:      repo,
		booking:   booking,
		publisher: publisher,
		currency:  currency,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	event.ID = uuid.NewString()
	if event.Status == "" {
		event.Status = models.EventDraft
	}
	if event.EventType == "" {
		event.EventType = models.EventPrivate
	}
	event.CurrentAttendees = 0
	event.BookingID = nil
	event.BookingStatus = ""

	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	log.Printf("[EventService] event %s created (%s)", event.ID, event.Status)

	s.emit(ctx, messaging.TopicEventCreated, summaryOf(event))
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.load(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindAll(ctx)
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, update EventUpdate) (*models.Event, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = update.Title
	event.Description = update.Description
	event.StartAt = update.StartAt
	event.EndAt = update.EndAt
	event.VenueID = update.VenueID
	event.VenueName = update.VenueName
	event.MaxAttendees = update.MaxAttendees
	if update.EventType != "" {
		event.EventType = update.EventType
	}
	if update.Status != "" {
		event.Status = update.Status
	}

	if err := s.save(ctx, event, "update"); err != nil {
		return nil, err
	}

	s.emit(ctx, messaging.TopicEventUpdated, summaryOf(event))
	return event, nil
}

// ReserveVenue replaces the event's venue booking with a fresh one for its
// current venue and time slot. Unlike the cleanup paths, every booking
// failure here is returned to the caller.
func (s *eventService) ReserveVenue(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.HasVenueSlot() {
		return nil, ErrVenueDetailsMissing
	}
	if s.booking == nil {
		return nil, wrapError(KindUpstreamUnavailable, "booking service is not configured", nil)
	}

	if s.releaseBooking(ctx, event) {
		if err := s.save(ctx, event, "release booking of"); err != nil {
			return nil, err
		}
	}

	available, err := s.booking.CheckAvailability(ctx, *event.VenueID, event.StartAt, *event.EndAt)
	if err != nil {
		return nil, wrapError(KindUpstreamUnavailable, "check venue availability", err)
	}
	if !available {
		return nil, ErrVenueUnavailable
	}

	resp, err := s.booking.CreateBooking(ctx, &bookingrpc.CreateBookingRequest{
		VenueID:          *event.VenueID,
		EventID:          event.ID,
		OrganizationID:   event.OrganizationID,
		StartEpochMillis: event.StartAt.UnixMilli(),
		EndEpochMillis:   event.EndAt.UnixMilli(),
		Currency:         s.currency,
	})
	if err != nil {
		return nil, wrapError(KindUpstreamUnavailable, "create venue booking", err)
	}

	bookingID := resp.BookingID
	event.BookingID = &bookingID
	event.BookingStatus = resp.Status
	if err := s.save(ctx, event, "save booking of"); err != nil {
		return nil, err
	}
	log.Printf("[EventService] event %s booked venue %s (booking %s, %s)", id, *event.VenueID, bookingID, resp.Status)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	event, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	s.releaseBooking(ctx, event)

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	log.Printf("[EventService] event %s deleted", id)

	s.emit(ctx, messaging.TopicEventDeleted, messaging.EventDeleted{EventID: id, DeletedAt: s.now()})
	return nil
}

// PublishEvent accepts any prior status, including CANCELLED and COMPLETED.
func (s *eventService) PublishEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.setStatus(ctx, id, models.EventPublished)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, messaging.TopicEventPublished, summaryOf(event))
	return event, nil
}

// CancelEvent accepts any prior status. The venue booking is released
// best-effort before the status change.
func (s *eventService) CancelEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.releaseBooking(ctx, event)

	event.Status = models.EventCancelled
	if err := s.save(ctx, event, "cancel"); err != nil {
		return nil, err
	}
	log.Printf("[EventService] event %s cancelled", id)

	s.emit(ctx, messaging.TopicEventCancelled, messaging.EventCancelled{EventID: id, CancelledAt: s.now()})
	return event, nil
}

// CompleteEvent emits no bus notification.
func (s *eventService) CompleteEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.setStatus(ctx, id, models.EventCompleted)
}

func (s *eventService) ListByOrganization(ctx context.Context, organizationID string) ([]models.Event, error) {
	return s.repo.FindByOrganization(ctx, organizationID)
}

func (s *eventService) ListByOrganizationAndStatus(ctx context.Context, organizationID string, status models.EventStatus) ([]models.Event, error) {
	return s.repo.FindByOrganizationAndStatus(ctx, organizationID, status)
}

func (s *eventService) ListByStatus(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	return s.repo.FindByStatus(ctx, status)
}

func (s *eventService) ListPublic(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindByType(ctx, models.EventPublic)
}

func (s *eventService) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindUpcoming(ctx, s.now())
}

func (s *eventService) ListPast(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindPast(ctx, s.now())
}

func (s *eventService) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	return s.repo.FindByDateRange(ctx, start, end)
}

func (s *eventService) ListByVenue(ctx context.Context, venueID string) ([]models.Event, error) {
	return s.repo.FindByVenue(ctx, venueID)
}

func (s *eventService) load(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", id, err)
	}
	return event, nil
}

// save writes event back. An event deleted since it was loaded is not
// recreated and reports ErrEventNotFound.
func (s *eventService) save(ctx context.Context, event *models.Event, action string) error {
	err := s.repo.Update(ctx, event)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("%s event %s: %w", action, event.ID, err)
	}
	return nil
}

func (s *eventService) setStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := event.Status
	event.Status = status
	if err := s.save(ctx, event, "set status of"); err != nil {
		return nil, err
	}
	log.Printf("[EventService] event %s %s -> %s", id, previous, status)
	return event, nil
}

// releaseBooking is a try, log, proceed step: the booking is cancelled if
// the event holds an active one, and a failed cancel is logged and never
// returned. On success the booking id is kept and the status returned by the
// booking service is recorded on event (not persisted).
func (s *eventService) releaseBooking(ctx context.Context, event *models.Event) bool {
	if !event.HasBooking() {
		return false
	}
	bookingID := *event.BookingID
	if s.booking == nil {
		log.Printf("[EventService] no booking client, leaving booking %s of event %s in place", bookingID, event.ID)
		return false
	}
	resp, err := s.booking.CancelBooking(ctx, bookingID)
	if err != nil {
		log.Printf("[EventService] cancel booking %s of event %s failed, proceeding: %v", bookingID, event.ID, err)
		return false
	}
	log.Printf("[EventService] booking %s of event %s released (%s)", bookingID, event.ID, resp.Status)
	event.BookingStatus = resp.Status
	if event.BookingStatus == "" {
		event.BookingStatus = models.BookingCancelled
	}
	return true
}

func (s *eventService) emit(ctx context.Context, topic string, payload any) {
	publish(ctx, s.publisher, "EventService", topic, payload)
}

// publish sends a notification after the store write it describes. A nil
// publisher is skipped and failures are only logged.
func publish(ctx context.Context, p Publisher, component, topic string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, payload); err != nil {
		log.Printf("[%s] publish %s failed: %v", component, topic, err)
	}
}

func summaryOf(event *models.Event) messaging.EventSummary {
	return messaging.EventSummary{
		EventID: event.ID,
		Title:   event.Title,
		Status:  string(event.Status),
		Summary: fmt.Sprintf("%s (%s)", event.Title, event.Status),
	}
}
