package notification

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nfrund/eventnotify/internal/pubsub"
)

const (
	// DefaultChannelPrefix prefixes the bus channel of every registration.
	DefaultChannelPrefix = "notification.registration"

	registrationIDPrefix = "REGISTRATION_"
)

// Registration is a subscriber's interest in a Topic. Matching events are
// published on Channel.
type Registration struct {
	id           string
	topic        Topic
	channel      string
	registeredAt time.Time
}

func (r *Registration) ID() string              { return r.id }
func (r *Registration) Topic() Topic            { return r.topic }
func (r *Registration) Channel() string         { return r.channel }
func (r *Registration) RegisteredAt() time.Time { return r.registeredAt }

// NotifierStats provides statistics about a Notifier
type NotifierStats struct {
	Topics        int   `json:"topics"`
	Registrations int   `json:"registrations"`
	Published     int64 `json:"published"`
	Deliveries    int64 `json:"deliveries"`
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithChannelPrefix sets the prefix of registration channels.
func WithChannelPrefix(prefix string) Option {
	return func(n *Notifier) {
		if prefix != "" {
			n.channelPrefix = prefix
		}
	}
}

// Notifier keeps registrations indexed by Topic and publishes events to the
// registrations whose topic matches. It is safe for concurrent use.
type Notifier struct {
	publisher     pubsub.Publisher
	logger        *slog.Logger
	channelPrefix string

	mu            sync.RWMutex
	registrations map[Topic]map[string]*Registration
	byID          map[string]*Registration

	published  atomic.Int64
	deliveries atomic.Int64
}

// NewNotifier creates a Notifier publishing on publisher.
func NewNotifier(publisher pubsub.Publisher, opts ...Option) *Notifier {
	n := &Notifier{
		publisher:     publisher,
		logger:        slog.Default(),
		channelPrefix: DefaultChannelPrefix,
		registrations: make(map[Topic]map[string]*Registration),
		byID:          make(map[string]*Registration),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Register validates the raw topic fields and registers interest in the
// resulting Topic. Validation errors from NewTopic are returned unchanged.
func (n *Notifier) Register(entityType, entityID, operation, attributeName string) (*Registration, error) {
	topic, err := NewTopic(entityType, entityID, operation, attributeName)
	if err != nil {
		return nil, err
	}
	return n.RegisterTopic(topic), nil
}

// RegisterTopic registers interest in an already validated Topic.
func (n *Notifier) RegisterTopic(topic Topic) *Registration {
	id := registrationIDPrefix + uuid.NewString()
	reg := &Registration{
		id:           id,
		topic:        topic,
		channel:      n.channelPrefix + "." + id,
		registeredAt: time.Now(),
	}

	if topic.Operation() == OperationSubmission && topic.EntityType() == EntityTypeNone {
		n.logger.Debug("Submission topic without entity type matches submissions of every entity type",
			"registration_id", id)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	regs, ok := n.registrations[topic]
	if !ok {
		regs = make(map[string]*Registration)
		n.registrations[topic] = regs
	}
	regs[id] = reg
	n.byID[id] = reg

	n.logger.Debug("Registered topic", "registration_id", id, "topic", topic.String())
	return reg
}

// Unregister removes a registration. The topic is dropped with its last registration.
func (n *Notifier) Unregister(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	reg, ok := n.byID[id]
	if !ok {
		return newError(ErrRegistrationNotFound, "registration_id", id,
			fmt.Sprintf("no registration with id %q", id))
	}

	delete(n.byID, id)
	regs := n.registrations[reg.topic]
	delete(regs, id)
	if len(regs) == 0 {
		delete(n.registrations, reg.topic)
	}

	n.logger.Debug("Unregistered topic", "registration_id", id, "topic", reg.topic.String())
	return nil
}

// Publish sends event to every registration whose topic matches it. Delivery
// errors are collected; one failing registration does not stop the others.
func (n *Notifier) Publish(ctx context.Context, event Event) error {
	payload, err := MarshalEvent(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	n.published.Add(1)

	var targets []*Registration
	n.mu.RLock()
	for topic, regs := range n.registrations {
		if !topicMatches(topic, event) {
			continue
		}
		for _, reg := range regs {
			targets = append(targets, reg)
		}
	}
	n.mu.RUnlock()

	var errs []error
	for _, reg := range targets {
		err := n.publisher.Publish(ctx, pubsub.Message{
			Topic:          reg.channel,
			RegistrationID: reg.id,
			Payload:        payload,
			Metadata: map[string]string{
				"entity_type": event.EntityType().String(),
				"operation":   event.Operation().String(),
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("deliver to %s: %w", reg.id, err))
			continue
		}
		n.deliveries.Add(1)
	}

	n.logger.Debug("Published event", "event", event.String(), "deliveries", len(targets)-len(errs))
	return errors.Join(errs...)
}

// topicMatches reports whether event passes the filter. Unset topic fields
// match anything; the attribute name is only compared when the event has one.
func topicMatches(topic Topic, event Event) bool {
	if topic.entityType != EntityTypeNone && topic.entityType != event.entityType {
		return false
	}
	if topic.entityID != "" && topic.entityID != event.entityID {
		return false
	}
	if topic.operation != OperationNone && topic.operation != event.operation {
		return false
	}
	if topic.attributeName != "" && event.attributeName != "" && topic.attributeName != event.attributeName {
		return false
	}
	return true
}

// Topics returns every topic with at least one registration, sorted by String.
func (n *Notifier) Topics() []Topic {
	n.mu.RLock()
	defer n.mu.RUnlock()

	topics := make([]Topic, 0, len(n.registrations))
	for topic := range n.registrations {
		topics = append(topics, topic)
	}
	slices.SortFunc(topics, func(a, b Topic) int {
		return cmp.Compare(a.String(), b.String())
	})
	return topics
}

// Registrations returns the registrations for topic, oldest first.
func (n *Notifier) Registrations(topic Topic) []*Registration {
	n.mu.RLock()
	defer n.mu.RUnlock()

	regs := make([]*Registration, 0, len(n.registrations[topic]))
	for _, reg := range n.registrations[topic] {
		regs = append(regs, reg)
	}
	slices.SortFunc(regs, func(a, b *Registration) int {
		if c := a.registeredAt.Compare(b.registeredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	return regs
}

// Get returns the registration with the given id.
func (n *Notifier) Get(id string) (*Registration, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	reg, ok := n.byID[id]
	return reg, ok
}

// Stats returns notifier statistics
func (n *Notifier) Stats() NotifierStats {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return NotifierStats{
		Topics:        len(n.registrations),
		Registrations: len(n.byID),
		Published:     n.published.Load(),
		Deliveries:    n.deliveries.Load(),
	}
}
