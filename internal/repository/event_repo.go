package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error

	FindByOrganization(ctx context.Context, organizationID string) ([]models.Event, error)
	FindByOrganizationAndStatus(ctx context.Context, organizationID string, status models.EventStatus) ([]models.Event, error)
	FindByStatus(ctx context.Context, status models.EventStatus) ([]models.Event, error)
	FindByType(ctx context.Context, eventType models.EventType) ([]models.Event, error)
	FindUpcoming(ctx context.Context, now time.Time) ([]models.Event, error)
	FindPast(ctx context.Context, now time.Time) ([]models.Event, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error)
	FindByVenue(ctx context.Context, venueID string) ([]models.Event, error)

	RecountAttendees(ctx context.Context, id string) error
	AdjustAttendees(ctx context.Context, id string, delta int, msg *models.ProcessedMessage) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).Order("start_at ASC"))
}

// Update writes the event's mutable columns. current_attendees is owned by
// RecountAttendees and AdjustAttendees and is never written here. An event
// that no longer exists yields ErrNotFound.
func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Select("*").
		Omit("id", "current_attendees", "created_at").
		Updates(event)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the event and its guest list in one transaction.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.GuestEntry{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *eventRepository) FindByOrganization(ctx context.Context, organizationID string) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("start_at ASC"))
}

func (r *eventRepository) FindByOrganizationAndStatus(ctx context.Context, organizationID string, status models.EventStatus) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationID, status).
		Order("start_at ASC"))
}

func (r *eventRepository) FindByStatus(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).Where("status = ?", status).Order("start_at ASC"))
}

func (r *eventRepository) FindByType(ctx context.Context, eventType models.EventType) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).Where("event_type = ?", eventType).Order("start_at ASC"))
}

// FindUpcoming returns published events that have not started yet, soonest first.
func (r *eventRepository) FindUpcoming(ctx context.Context, now time.Time) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).
		Where("start_at > ? AND status = ?", now, models.EventPublished).
		Order("start_at ASC"))
}

// FindPast returns every event that already started, regardless of status, latest first.
func (r *eventRepository) FindPast(ctx context.Context, now time.Time) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).Where("start_at < ?", now).Order("start_at DESC"))
}

func (r *eventRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).
		Where("start_at BETWEEN ? AND ?", start, end).
		Order("start_at ASC"))
}

func (r *eventRepository) FindByVenue(ctx context.Context, venueID string) ([]models.Event, error) {
	return r.find(r.db.WithContext(ctx).Where("venue_id = ?", venueID).Order("start_at ASC"))
}

// RecountAttendees overwrites current_attendees with the number of accepted
// guest entries in a single statement.
func (r *eventRepository) RecountAttendees(ctx context.Context, id string) error {
	accepted := r.db.Model(&models.GuestEntry{}).
		Select("count(*)").
		Where("event_id = ? AND rsvp_status = ?", id, models.RsvpAccepted)

	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("current_attendees", accepted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustAttendees adds delta to current_attendees, clamped at zero. When msg is
// non-nil it is recorded in the same transaction and a message id that was
// already recorded yields ErrDuplicate without touching the count.
func (r *eventRepository) AdjustAttendees(ctx context.Context, id string, delta int, msg *models.ProcessedMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if msg != nil {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(msg)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrDuplicate
			}
		}

		res := tx.Model(&models.Event{}).
			Where("id = ?", id).
			Update("current_attendees", gorm.Expr("GREATEST(current_attendees + ?, 0)", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *eventRepository) find(q *gorm.DB) ([]models.Event, error) {
	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
