package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
type Message struct {
	// Topic identifies the channel, e.g. "chat.room.message".
	Topic string
	// UserID identifies the connection or user that caused the message.
	UserID string
	// Payload contains the raw message data.
	Payload []byte
	// Metadata carries routing hints such as the target room id.
	Metadata map[string]string
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber receives messages from the bus.
type Subscriber interface {
	// Subscribe registers handler for topic and returns once the
	// subscription is active. Delivery stops when ctx is canceled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Bus is both ends of an in-process bus.
type Bus interface {
	Publisher
	Subscriber
}
