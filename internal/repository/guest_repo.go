package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/models"
	"gorm.io/gorm"
)

type GuestRepository interface {
	Create(ctx context.Context, guest *models.GuestEntry) error
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.GuestEntry, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	Update(ctx context.Context, guest *models.GuestEntry) error
	Delete(ctx context.Context, guest *models.GuestEntry) error

	FindByEvent(ctx context.Context, eventID string) ([]models.GuestEntry, error)
	FindByUser(ctx context.Context, userID string) ([]models.GuestEntry, error)
	FindByEventAndRole(ctx context.Context, eventID string, role models.GuestRole) ([]models.GuestEntry, error)
	FindByEventAndStatus(ctx context.Context, eventID string, status models.RsvpStatus) ([]models.GuestEntry, error)
	FindCheckedIn(ctx context.Context, eventID string) ([]models.GuestEntry, error)

	CountByEvent(ctx context.Context, eventID string) (int64, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error)
	CountCheckedIn(ctx context.Context, eventID string) (int64, error)
}

type guestRepository struct {
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) GuestRepository {
	return &guestRepository{db: db}
}

// Create inserts the entry; a second entry for the same (event, user) pair
// fails with ErrDuplicate from the unique index.
func (r *guestRepository) Create(ctx context.Context, guest *models.GuestEntry) error {
	return translate(r.db.WithContext(ctx).Create(guest).Error)
}

func (r *guestRepository) FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.GuestEntry, error) {
	var guest models.GuestEntry
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&guest).Error
	if err != nil {
		return nil, translate(err)
	}
	return &guest, nil
}

func (r *guestRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GuestEntry{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// Update writes the entry's mutable columns; an entry that was removed
// meanwhile yields ErrNotFound.
func (r *guestRepository) Update(ctx context.Context, guest *models.GuestEntry) error {
	res := r.db.WithContext(ctx).
		Model(&models.GuestEntry{}).
		Where("id = ?", guest.ID).
		Select("*").
		Omit("id", "event_id", "user_id", "invited_at", "Event").
		Updates(guest)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *guestRepository) Delete(ctx context.Context, guest *models.GuestEntry) error {
	return r.db.WithContext(ctx).Delete(guest).Error
}

func (r *guestRepository) FindByEvent(ctx context.Context, eventID string) ([]models.GuestEntry, error) {
	return r.find(r.db.WithContext(ctx).Where("event_id = ?", eventID))
}

func (r *guestRepository) FindByUser(ctx context.Context, userID string) ([]models.GuestEntry, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *guestRepository) FindByEventAndRole(ctx context.Context, eventID string, role models.GuestRole) ([]models.GuestEntry, error) {
	return r.find(r.db.WithContext(ctx).Where("event_id = ? AND role = ?", eventID, role))
}

func (r *guestRepository) FindByEventAndStatus(ctx context.Context, eventID string, status models.RsvpStatus) ([]models.GuestEntry, error) {
	return r.find(r.db.WithContext(ctx).Where("event_id = ? AND rsvp_status = ?", eventID, status))
}

func (r *guestRepository) FindCheckedIn(ctx context.Context, eventID string) ([]models.GuestEntry, error) {
	return r.find(r.db.WithContext(ctx).Where("event_id = ? AND checked_in = ?", eventID, true))
}

func (r *guestRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	return r.count(r.db.WithContext(ctx).Where("event_id = ?", eventID))
}

func (r *guestRepository) CountByEventAndStatus(ctx context.Context, eventID string, status models.RsvpStatus) (int64, error) {
	return r.count(r.db.WithContext(ctx).Where("event_id = ? AND rsvp_status = ?", eventID, status))
}

func (r *guestRepository) CountCheckedIn(ctx context.Context, eventID string) (int64, error) {
	return r.count(r.db.WithContext(ctx).Where("event_id = ? AND checked_in = ?", eventID, true))
}

func (r *guestRepository) find(q *gorm.DB) ([]models.GuestEntry, error) {
	var guests []models.GuestEntry
	if err := q.Order("invited_at ASC").Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *guestRepository) count(q *gorm.DB) (int64, error) {
	var count int64
	err := q.Model(&models.GuestEntry{}).Count(&count).Error
	return count, err
}
