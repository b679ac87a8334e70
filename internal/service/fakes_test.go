package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/repository"
	"github.com/Eursukkul/booking-microservice/event-manager/pkg/bookingrpc"
)

// --- In-memory store shared by the event and guest repositories ---

type memStore struct {
	mu        sync.Mutex
	events    map[string]models.Event
	guests    map[string]models.GuestEntry
	processed map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		events:    map[string]models.Event{},
		guests:    map[string]models.GuestEntry{},
		processed: map[string]bool{},
	}
}

func guestKey(eventID, userID string) string {
	return eventID + "|" + userID
}

func (m *memStore) attendees(eventID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[eventID].CurrentAttendees
}

func (m *memStore) setAttendees(eventID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[eventID]
	e.CurrentAttendees = n
	m.events[eventID] = e
}

type memEventRepo struct {
	store *memStore
}

func (r *memEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[event.ID]; ok {
		return repository.ErrDuplicate
	}
	r.store.events[event.ID] = *event
	return nil
}

func (r *memEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *memEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	return r.filter(func(models.Event) bool { return true }, false), nil
}

func (r *memEventRepo) Update(ctx context.Context, event *models.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.events[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *event
	updated.CurrentAttendees = stored.CurrentAttendees
	updated.CreatedAt = stored.CreatedAt
	r.store.events[event.ID] = updated
	return nil
}

func (r *memEventRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.events, id)
	for k, g := range r.store.guests {
		if g.EventID == id {
			delete(r.store.guests, k)
		}
	}
	return nil
}

func (r *memEventRepo) FindByOrganization(ctx context.Context, organizationID string) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool { return e.OrganizationID == organizationID }, false), nil
}

func (r *memEventRepo) FindByOrganizationAndStatus(ctx context.Context, organizationID string, status models.EventStatus) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool {
		return e.OrganizationID == organizationID && e.Status == status
	}, false), nil
}

func (r *memEventRepo) FindByStatus(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool { return e.Status == status }, false), nil
}

func (r *memEventRepo) FindByType(ctx context.Context, eventType models.EventType) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool { return e.EventType == eventType }, false), nil
}

func (r *memEventRepo) FindUpcoming(ctx context.Context, now time.Time) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool {
		return e.Status == models.EventPublished && e.StartAt.After(now)
	}, false), nil
}

func (r *memEventRepo) FindPast(ctx context.Context, now time.Time) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool { return e.StartAt.Before(now) }, true), nil
}

func (r *memEventRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool {
		return !e.StartAt.Before(start) && !e.StartAt.After(end)
	}, false), nil
}

func (r *memEventRepo) FindByVenue(ctx context.Context, venueID string) ([]models.Event, error) {
	return r.filter(func(e models.Event) bool { return e.VenueID != nil && *e.VenueID == venueID }, false), nil
}

func (r *memEventRepo) RecountAttendees(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	n := 0
	for _, g := range r.store.guests {
		if g.EventID == id && g.RsvpStatus == models.RsvpAccepted {
			n++
		}
	}
	e.CurrentAttendees = n
	r.store.events[id] = e
	return nil
}

func (r *memEventRepo) AdjustAttendees(ctx context.Context, id string, delta int, msg *models.ProcessedMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if msg != nil && r.store.processed[msg.MessageID] {
		return repository.ErrDuplicate
	}
	e, ok := r.store.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	if msg != nil {
		r.store.processed[msg.MessageID] = true
	}
	e.CurrentAttendees = max(e.CurrentAttendees+delta, 0)
	r.store.events[id] = e
	return nil
}

func (r *memEventRepo) filter(keep func(models.Event) bool, desc bool) []models.Event {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []models.Event{}
	for _, e := range r.store.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].StartAt.After(out[j].StartAt)
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}

type memGuestRepo struct {
	store *memStore
}

func (r *memGuestRepo) Create(ctx context.Context, guest *models.GuestEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := guestKey(guest.EventID, guest.UserID)
	if _, ok := r.store.guests[k]; ok {
		return repository.ErrDuplicate
	}
	r.store.guests[k] = *guest
	return nil
}

func (r *memGuestRepo) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	g, ok := r.store.guests[guestKey(eventID, userID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *memGuestRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.guests[guestKey(eventID, userID)]
	return ok, nil
}

func (r *memGuestRepo) Update(ctx context.Context, guest *models.GuestEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := guestKey(guest.EventID, guest.UserID)
	if stored, ok := r.store.guests[key]; !ok || stored.ID != guest.ID {
		return repository.ErrNotFound
	}
	r.store.guests[key] = *guest
	return nil
}

func (r *memGuestRepo) Delete(ctx context.Context, guest *models.GuestEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.guests, guestKey(guest.EventID, guest.UserID))
	return nil
}

func (r *memGuestRepo) FindByEvent(ctx context.Context, eventID string) ([]models.GuestEntry, error) {
	return r.filter(func(g models.GuestEntry) bool { return g.EventID == eventID }), nil
}

func (r *memGuestRepo) FindByUser(ctx context.Context, userID string) ([]models.GuestEntry, error) {
	return r.filter(func(g models.GuestEntry) bool { return g.UserID == userID }), nil
}

func (r *memGuestRepo) FindByEventAndRole(ctx context.Context, eventID string, role models.GuestRole) ([]models.GuestEntry, error) {
	return r.filter(func(g models.GuestEntry) bool { return g.EventID == eventID && g.Role == role }), nil
}

func (r *memGuestRepo) FindByEventAndStatus(ctx context.Context, eventID string, status models.RsvpStatus) ([]models.GuestEntry, error) {
	return r.filter(func(g models.GuestEntry) bool { return g.EventID == eventID && g.RsvpStatus == status }), nil
}

func (r *memGuestRepo) FindCheckedIn(ctx context.Context, eventID string) ([]models.GuestEntry, error) {
	return r.filter(func(g models.GuestEntry) bool { return g.EventID == eventID && g.CheckedIn }), nil
}

func (r *memGuestRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	guests, _ := r.FindByEvent(ctx, eventID)
	return int64(len(guests)), nil
}

func (r *memGuestRepo) CountByEventAndStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error) {
	guests, _ := r.FindByEventAndStatus(ctx, eventID, status)
	return int64(len(guests)), nil
}

func (r *memGuestRepo) CountCheckedIn(ctx context.Context, eventID string) (int64, error) {
	guests, _ := r.FindCheckedIn(ctx, eventID)
	return int64(len(guests)), nil
}

func (r *memGuestRepo) filter(keep func(models.GuestEntry) bool) []models.GuestEntry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []models.GuestEntry{}
	for _, g := range r.store.guests {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// racyGuestRepo always reports "not invited", as a concurrent invite that
// passed the existence check before the other insert landed would see it.
type racyGuestRepo struct {
	repository.GuestRepository
}

func (racyGuestRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	return false, nil
}

// --- Mock EventRepository for failure paths ---

type mockEventRepo struct {
	repository.EventRepository
	createFn   func(ctx context.Context, event *models.Event) error
	findByIDFn func(ctx context.Context, id string) (*models.Event, error)
	findAllFn  func(ctx context.Context) ([]models.Event, error)
	recountFn  func(ctx context.Context, id string) error
	adjustFn   func(ctx context.Context, id string, delta int, msg *models.ProcessedMessage) error
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	return m.findAllFn(ctx)
}
func (m *mockEventRepo) RecountAttendees(ctx context.Context, id string) error {
	return m.recountFn(ctx, id)
}
func (m *mockEventRepo) AdjustAttendees(ctx context.Context, id string, delta int, msg *models.ProcessedMessage) error {
	return m.adjustFn(ctx, id, delta, msg)
}

// interleavingEventRepo runs afterFind between a load and the write that
// follows it, standing in for a concurrent writer.
type interleavingEventRepo struct {
	repository.EventRepository
	afterFind func(id string)
}

func (r *interleavingEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	event, err := r.EventRepository.FindByID(ctx, id)
	if err == nil {
		r.afterFind(id)
	}
	return event, err
}

type interleavingGuestRepo struct {
	repository.GuestRepository
	afterFind func(guest models.GuestEntry)
}

func (r *interleavingGuestRepo) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	guest, err := r.GuestRepository.FindByEventAndUser(ctx, eventID, userID)
	if err == nil {
		r.afterFind(*guest)
	}
	return guest, err
}

// --- Mock BookingClient ---

var errUnexpectedCall = errors.New("unexpected booking call")

type mockBooking struct {
	mu           sync.Mutex
	checkFn      func(ctx context.Context, venueID string, start, end time.Time) (bool, error)
	createFn     func(ctx context.Context, req *bookingrpc.CreateBookingRequest) (*bookingrpc.CreateBookingResponse, error)
	cancelFn     func(ctx context.Context, bookingID string) (*bookingrpc.CancelBookingResponse, error)
	checks       int
	creates      []*bookingrpc.CreateBookingRequest
	cancelledIDs []string
}

func (m *mockBooking) CheckAvailability(ctx context.Context, venueID string, start, end time.Time) (bool, error) {
	m.mu.Lock()
	m.checks++
	m.mu.Unlock()
	if m.checkFn == nil {
		return false, errUnexpectedCall
	}
	return m.checkFn(ctx, venueID, start, end)
}

func (m *mockBooking) CreateBooking(ctx context.Context, req *bookingrpc.CreateBookingRequest) (*bookingrpc.CreateBookingResponse, error) {
	m.mu.Lock()
	m.creates = append(m.creates, req)
	m.mu.Unlock()
	if m.createFn == nil {
		return nil, errUnexpectedCall
	}
	return m.createFn(ctx, req)
}

func (m *mockBooking) CancelBooking(ctx context.Context, bookingID string) (*bookingrpc.CancelBookingResponse, error) {
	m.mu.Lock()
	m.cancelledIDs = append(m.cancelledIDs, bookingID)
	m.mu.Unlock()
	if m.cancelFn == nil {
		return nil, errUnexpectedCall
	}
	return m.cancelFn(ctx, bookingID)
}

// --- Recording Publisher ---

type publishedMessage struct {
	topic   string
	payload any
}

type recordingPublisher struct {
	mu       sync.Mutex
	err      error
	messages []publishedMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{topic: routingKey, payload: payload})
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []string{}
	for _, m := range p.messages {
		out = append(out, m.topic)
	}
	return out
}

func (p *recordingPublisher) last() publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[len(p.messages)-1]
}

// --- Mock Reconciler ---

type mockReconciler struct {
	recomputeFn func(ctx context.Context, eventID string) error
}

func (m *mockReconciler) Recompute(ctx context.Context, eventID string) error {
	return m.recomputeFn(ctx, eventID)
}
func (m *mockReconciler) ApplyDelta(ctx context.Context, eventID string, delta int, messageID string) error {
	return nil
}
func (m *mockReconciler) HandleRsvpNotification(ctx context.Context, topic string, payload []byte, messageID string) error {
	return nil
}

// --- Fixtures ---

func ptr[T any](v T) *T {
	return &v
}

func sampleEvent() *models.Event {
	start := time.Date(2026, 11, 20, 17, 0, 0, 0, time.UTC)
	return &models.Event{
		Title:          "Golang Workshop Bangkok",
		Description:    "Hands-on Go",
		StartAt:        start,
		EndAt:          ptr(start.Add(2 * time.Hour)),
		VenueID:        ptr("5b0c3f9e-8d7a-4e39-9d1c-2a6f1f0e7b11"),
		VenueName:      "Hall A",
		OrganizationID: "org-1",
		OrganizerID:    "organizer-1",
		MaxAttendees:   ptr(100),
		EventType:      models.EventPublic,
	}
}

type fixture struct {
	store      *memStore
	events     *memEventRepo
	guests     *memGuestRepo
	booking    *mockBooking
	publisher  *recordingPublisher
	eventSvc   EventService
	guestSvc   GuestService
	reconciler Reconciler
}

func newFixture(strategy CountStrategy) *fixture {
	store := newMemStore()
	f := &fixture{
		store:     store,
		events:    &memEventRepo{store: store},
		guests:    &memGuestRepo{store: store},
		booking:   &mockBooking{},
		publisher: &recordingPublisher{},
	}
	f.reconciler = NewReconciler(f.events)
	f.eventSvc = NewEventService(f.events, f.booking, f.publisher, "")
	f.guestSvc = NewGuestService(f.guests, f.events, f.reconciler, f.publisher, strategy)
	return f
}

func (f *fixture) createEvent(mutate ...func(*models.Event)) *models.Event {
	e := sampleEvent()
	for _, m := range mutate {
		m(e)
	}
	if err := f.eventSvc.CreateEvent(context.Background(), e); err != nil {
		panic(err)
	}
	return e
}
