package consumer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/event-manager/internal/messaging"
	"github.com/Eursukkul/booking-microservice/event-manager/internal/service"
	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue this service reads RSVP notifications from.
const QueueName = "event-manager.rsvp"

// RoutingKeys are the topics bound to QueueName.
var RoutingKeys = []string{messaging.TopicRsvpAccepted, messaging.TopicRsvpDeclined}

// RsvpConsumer feeds RSVP notifications from the bus into the reconciler.
// Deliveries are handled one at a time, so retry state needs no locking.
type RsvpConsumer struct {
	reconciler service.Reconciler
	retry      *backoff.ExponentialBackOff
	wait       func(ctx context.Context, d time.Duration)
}

func NewRsvpConsumer(reconciler service.Reconciler) *RsvpConsumer {
	retry := &backoff.ExponentialBackOff{
		InitialInterval:     200 * time.Millisecond,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          2,
		MaxInterval:         30 * time.Second,
	}
	retry.Reset()
	return &RsvpConsumer{reconciler: reconciler, retry: retry, wait: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run handles deliveries until ctx is cancelled or the channel closes.
func (c *RsvpConsumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			log.Println("[RsvpConsumer] context done, stopping consumer")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				log.Println("[RsvpConsumer] channel closed, stopping consumer")
				return nil
			}
			c.handleMessage(ctx, msg)
		}
	}
}

// handleMessage acks applied and ignored messages, drops malformed ones and
// requeues those that failed on the store. A requeue is held back by an
// exponential delay that grows while the store keeps failing and resets on
// the next applied message.
func (c *RsvpConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	err := c.reconciler.HandleRsvpNotification(ctx, msg.RoutingKey, msg.Body, msg.MessageId)
	switch {
	case err == nil:
		c.retry.Reset()
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Printf("[RsvpConsumer] ack %s failed: %v", msg.MessageId, ackErr)
		}
	case errors.Is(err, messaging.ErrMalformedPayload):
		log.Printf("[RsvpConsumer] dropping malformed %s message %s: %v", msg.RoutingKey, msg.MessageId, err)
		msg.Nack(false, false)
	default:
		delay := c.retry.NextBackOff()
		log.Printf("[RsvpConsumer] failed to apply %s message %s, requeue in %s: %v", msg.RoutingKey, msg.MessageId, delay, err)
		c.wait(ctx, delay)
		msg.Nack(false, true)
	}
}
