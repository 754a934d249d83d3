package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel/trace"
)

// Metadata keys used to carry Message fields through watermill.
const (
	metaKeyUserID = "user_id"
	metaKeyTopic  = "topic"
)

// WatermillBridge implements Bus on top of watermill's GoChannel.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger watermill.LoggerAdapter
}

var _ Bus = (*WatermillBridge)(nil)

// Option configures a WatermillBridge.
type Option func(*bridgeOptions)

type bridgeOptions struct {
	tracer trace.Tracer
	debug  bool
}

// WithTracer wraps publishing with OpenTelemetry spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *bridgeOptions) { o.tracer = tracer }
}

// WithDebugLogging enables watermill's own debug output.
func WithDebugLogging() Option {
	return func(o *bridgeOptions) { o.debug = true }
}

// NewWatermillBridge creates an in-memory bus. Publish blocks until every
// subscriber has acknowledged the message, so messages published by one
// goroutine are handled in publish order.
func NewWatermillBridge(opts ...Option) *WatermillBridge {
	var o bridgeOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := watermill.NewStdLogger(o.debug, false)
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		logger,
	)

	var pub message.Publisher = goChannel
	if o.tracer != nil {
		pub = NewPublisherTracingMiddleware(goChannel, o.tracer)
	}

	return &WatermillBridge{
		pub:    pub,
		sub:    goChannel,
		logger: logger,
	}
}

func mapToWatermillMessage(ctx context.Context, msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wmMsg.SetContext(ctx)

	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}
	wmMsg.Metadata.Set(metaKeyUserID, msg.UserID)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)
	return wmMsg
}

func mapToPubSubMessage(wmMsg *message.Message) Message {
	metadata := make(map[string]string, len(wmMsg.Metadata))
	for k, v := range wmMsg.Metadata {
		if k != metaKeyUserID && k != metaKeyTopic {
			metadata[k] = v
		}
	}

	return Message{
		Topic:    wmMsg.Metadata.Get(metaKeyTopic),
		UserID:   wmMsg.Metadata.Get(metaKeyUserID),
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

// Publish implements Publisher.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	if msg.Topic == "" {
		return fmt.Errorf("pubsub: publish without topic")
	}
	return wb.pub.Publish(msg.Topic, mapToWatermillMessage(ctx, msg))
}

// Subscribe implements Subscriber. Handler errors and panics are logged and
// the message is still acked: a nack would make GoChannel resend it forever.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wmMsg := range messages {
			msg := mapToPubSubMessage(wmMsg)
			if err := safeHandle(ctx, handler, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
			}
			wmMsg.Ack()
		}
		slog.DebugContext(ctx, "Subscription message loop ended", "topic", topic)
	}()

	return nil
}

func safeHandle(ctx context.Context, handler Handler, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, msg)
}

// Close shuts down the bus and ends every subscription.
func (wb *WatermillBridge) Close() error {
	return wb.sub.Close()
}
