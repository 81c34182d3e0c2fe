package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nfrund/eventnotify/internal/pubsub"
)

// EventHandler processes an event delivered to a registration.
type EventHandler func(ctx context.Context, event Event) error

// Consumer receives the events published for one registration.
type Consumer struct {
	registration *Registration
	subscriber   pubsub.Subscriber
	handler      EventHandler
	logger       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewConsumer creates a consumer for reg. Call Start to begin receiving.
func NewConsumer(reg *Registration, subscriber pubsub.Subscriber, handler EventHandler) *Consumer {
	return &Consumer{
		registration: reg,
		subscriber:   subscriber,
		handler:      handler,
		logger:       slog.Default().With("registration_id", reg.ID()),
	}
}

// Start subscribes to the registration channel. It returns once the
// subscription is active; events are handled in the background until Stop is
// called or ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return errors.New("consumer already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	err := c.subscriber.Subscribe(ctx, c.registration.Channel(), func(ctx context.Context, msg pubsub.Message) error {
		event, err := UnmarshalEvent(msg.Payload)
		if err != nil {
			c.logger.Error("Dropping undecodable event", "error", err)
			return err
		}
		return c.handler(ctx, event)
	})
	if err != nil {
		cancel()
		return err
	}

	c.cancel = cancel
	return nil
}

// Stop ends the subscription. It is safe to call more than once.
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
