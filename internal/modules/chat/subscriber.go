package chat

import (
	"context"
	"log/slog"

	"github.com/nfrund/charroom/internal/modules/chat/events"
	"github.com/nfrund/charroom/internal/modules/chat/topics"
	"github.com/nfrund/charroom/internal/pubsub"
	"github.com/nfrund/charroom/internal/websocket"
)

// Subscriber delivers relay topics from the bus to socket connections.
type Subscriber struct {
	subscriber pubsub.Subscriber
	hub        *websocket.Hub
}

// NewSubscriber creates a subscriber delivering through hub.
func NewSubscriber(sub pubsub.Subscriber, hub *websocket.Hub) *Subscriber {
	return &Subscriber{subscriber: sub, hub: hub}
}

// Start subscribes to the relay topics. Delivery stops when ctx is canceled.
func (s *Subscriber) Start(ctx context.Context) error {
	slog.Info("Starting chat relay subscriber")

	if err := s.subscriber.Subscribe(ctx, topics.TopicRoomMessage.Name(), s.handleRoomMessage); err != nil {
		return err
	}
	return s.subscriber.Subscribe(ctx, topics.TopicDirect.Name(), s.handleDirect)
}

func (s *Subscriber) handleRoomMessage(ctx context.Context, msg pubsub.Message) error {
	in, err := topics.TopicRoomMessage.Decode(msg)
	if err != nil {
		return err
	}

	frame, err := websocket.Encode(events.NewMessage, in.Message)
	if err != nil {
		return err
	}
	delivered := s.hub.BroadcastToRoom(in.RoomID, frame)
	slog.DebugContext(ctx, "Broadcast chat message", "room_id", in.RoomID, "message_id", in.Message.ID, "recipients", delivered)
	return nil
}

func (s *Subscriber) handleDirect(ctx context.Context, msg pubsub.Message) error {
	in, err := topics.TopicDirect.Decode(msg)
	if err != nil {
		return err
	}

	frame, err := websocket.Encode(in.Event, in.Data)
	if err != nil {
		return err
	}
	if !s.hub.SendTo(in.ClientID, frame) {
		slog.DebugContext(ctx, "Direct frame not delivered", "client_id", in.ClientID, "event", in.Event)
	}
	return nil
}
