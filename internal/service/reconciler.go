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
)

// CountStrategy selects the single integration point that maintains an
// event's attendee count.
type CountStrategy string

const (
	// StrategyRecompute tracks RSVPs locally and recounts accepted guests
	// synchronously after every local RSVP change.
	StrategyRecompute CountStrategy = "recompute"
	// StrategyDelta leaves RSVPs to the guest service and applies
	// rsvp-accepted / rsvp-declined notifications from the bus.
	StrategyDelta CountStrategy = "delta"
)

func ParseCountStrategy(s string) (CountStrategy, error) {
	switch st := CountStrategy(s); st {
	case StrategyRecompute, StrategyDelta:
		return st, nil
	}
	return "", fmt.Errorf("unknown attendee count strategy %q", s)
}

// Reconciler keeps Event.CurrentAttendees in line with accepted RSVPs.
// Updates for events that no longer exist are dropped without error.
type Reconciler interface {
	Recompute(ctx context.Context, eventID string) error
	ApplyDelta(ctx context.Context, eventID string, delta int, messageID string) error
	HandleRsvpNotification(ctx context.Context, topic string, payload []byte, messageID string) error
}

type reconciler struct {
	events repository.EventRepository
}

func NewReconciler(events repository.EventRepository) Reconciler {
	return &reconciler{events: events}
}

func (r *reconciler) Recompute(ctx context.Context, eventID string) error {
	err := r.events.RecountAttendees(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("[Reconciler] recount skipped, event %s no longer exists", eventID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("recount attendees of event %s: %w", eventID, err)
	}
	return nil
}

// ApplyDelta adds delta to the attendee count, never going below zero. A
// non-empty messageID makes the adjustment apply at most once.
func (r *reconciler) ApplyDelta(ctx context.Context, eventID string, delta int, messageID string) error {
	return r.applyDelta(ctx, eventID, delta, "", messageID)
}

func (r *reconciler) HandleRsvpNotification(ctx context.Context, topic string, payload []byte, messageID string) error {
	change, err := messaging.DecodeRsvpChange(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", topic, err)
	}

	switch topic {
	case messaging.TopicRsvpAccepted:
		return r.applyDelta(ctx, change.EventID, 1, topic, messageID)
	case messaging.TopicRsvpDeclined:
		if !change.WasAccepted {
			return nil
		}
		return r.applyDelta(ctx, change.EventID, -1, topic, messageID)
	}
	return nil
}

func (r *reconciler) applyDelta(ctx context.Context, eventID string, delta int, topic, messageID string) error {
	var msg *models.ProcessedMessage
	if messageID != "" {
		msg = &models.ProcessedMessage{MessageID: messageID, Topic: topic, ProcessedAt: time.Now().UTC()}
	}

	err := r.events.AdjustAttendees(ctx, eventID, delta, msg)
	switch {
	case err == nil:
		log.Printf("[Reconciler] event %s attendees %+d", eventID, delta)
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		log.Printf("[Reconciler] message %s already applied, skipping", messageID)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		log.Printf("[Reconciler] delta %+d skipped, event %s no longer exists", delta, eventID)
		return nil
	}
	return fmt.Errorf("adjust attendees of event %s: %w", eventID, err)
}
