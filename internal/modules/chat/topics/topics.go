// Package topics declares the bus topics the chat relay publishes on.
package topics

import (
	"encoding/json"

	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/pubsub"
)

// RoomMessage carries a persisted message to fan out to a room.
type RoomMessage struct {
	RoomID  string             `json:"roomId"`
	Message domain.ChatMessage `json:"message"`
}

// Direct carries a single frame for one connection.
type Direct struct {
	ClientID string          `json:"clientId"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data"`
}

var (
	// TopicRoomMessage is published once per persisted chat message.
	TopicRoomMessage = pubsub.NewEvent[RoomMessage](
		"chat.room.message",
		"A persisted chat message to broadcast to every member of a room",
	)

	// TopicDirect is published for acknowledgements and errors addressed to
	// a single connection.
	TopicDirect = pubsub.NewEvent[Direct](
		"chat.connection.direct",
		"A frame addressed to a single connection",
	)
)
