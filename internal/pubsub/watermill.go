package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel/trace"
)

// WatermillBridge implements Publisher and Subscriber on watermill's in-memory GoChannel.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	tracer trace.Tracer
	logger *slog.Logger
}

const (
	// Metadata keys used to carry Message fields through watermill's message.
	metaKeyRegistrationID = "registration_id"
	metaKeyTopic          = "topic"
)

// NewWatermillBridge initializes an in-memory bus without tracing.
func NewWatermillBridge() *WatermillBridge {
	return NewWatermillBridgeWithTracer(nil)
}

// NewWatermillBridgeWithTracer initializes an in-memory bus. When tracer is
// non-nil, every publish and every delivery gets a span.
func NewWatermillBridgeWithTracer(tracer trace.Tracer) *WatermillBridge {
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{},
		logger,
	)

	var pub message.Publisher = goChannel
	if tracer != nil {
		pub = NewPublisherTracingMiddleware(goChannel, tracer)
	}

	return &WatermillBridge{
		pub:    pub,
		sub:    goChannel,
		tracer: tracer,
		logger: slog.Default(),
	}
}

// mapToWatermillMessage converts a Message to a watermill message.
func mapToWatermillMessage(ctx context.Context, msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wmMsg.SetContext(ctx)

	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}
	wmMsg.Metadata.Set(metaKeyRegistrationID, msg.RegistrationID)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)

	return wmMsg
}

// mapToPubSubMessage converts a watermill message back to a Message.
func mapToPubSubMessage(wmMsg *message.Message) Message {
	metadata := make(map[string]string)
	for k, v := range wmMsg.Metadata {
		if k != metaKeyRegistrationID && k != metaKeyTopic {
			metadata[k] = v
		}
	}

	return Message{
		Topic:          wmMsg.Metadata.Get(metaKeyTopic),
		RegistrationID: wmMsg.Metadata.Get(metaKeyRegistrationID),
		Payload:        wmMsg.Payload,
		Metadata:       metadata,
	}
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	return wb.pub.Publish(msg.Topic, mapToWatermillMessage(ctx, msg))
}

// Subscribe implements the Subscriber interface. Messages are handled on a
// background goroutine until ctx is canceled or the bridge is closed.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	if wb.tracer != nil {
		handler = traceHandler(wb.tracer, topic, handler)
	}

	go func() {
		for wmMsg := range messages {
			msg := mapToPubSubMessage(wmMsg)

			if err := handler(ctx, msg); err != nil {
				wb.logger.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
			}
			// GoChannel redelivers nacked messages immediately, so failures are
			// logged and acknowledged.
			wmMsg.Ack()
		}
		wb.logger.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close shuts down the bus and ends every subscription loop.
func (wb *WatermillBridge) Close() error {
	return wb.sub.Close()
}
