// Package events defines the frames exchanged with chat clients over the
// socket.
package events

import (
	"time"

	"github.com/nfrund/charroom/internal/domain"
)

// Client to server events.
const (
	JoinRoom          = "join-room"
	LeaveRoom         = "leave-room"
	ChatMessage       = "chat-message"
	RequestAIResponse = "request-ai-response"
)

// Server to client events.
const (
	JoinedRoom = "joined-room"
	LeftRoom   = "left-room"
	NewMessage = "new-message"
	Error      = "error"
	Message    = "message"
)

// SendMessage is the chat-message payload.
type SendMessage struct {
	Content    string            `json:"content" validate:"notblank,max=8000"`
	SenderType domain.SenderType `json:"senderType" validate:"required,sendertype"`
	SenderID   *string           `json:"senderId,omitempty"`
	ChatRoomID string            `json:"chatRoomId" validate:"notblank"`
}

// AIRequest is the request-ai-response payload.
type AIRequest struct {
	Message     string `json:"message" validate:"notblank,max=8000"`
	ChatRoomID  string `json:"chatRoomId" validate:"notblank"`
	CharacterID string `json:"characterId" validate:"notblank"`
}

// RoomAck answers join-room and leave-room.
type RoomAck struct {
	ChatRoomID string `json:"chatRoomId"`
	Message    string `json:"message"`
}

// ErrorPayload carries a user-facing failure description.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Greeting is sent once to every new connection.
type Greeting struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`
}

// Fixed user-facing error messages.
const (
	MsgSendFailed        = "Failed to send message"
	MsgCharacterNotFound = "Character not found"
	MsgAIFailed          = "Failed to generate AI response"
	MsgAITimeout         = "AI response timed out"
	MsgRoomNotFound      = "Room not found"
	MsgJoinFailed        = "Failed to join room"
	MsgUnknownEvent      = "Unknown event"
	MsgWelcome           = "Welcome to the chat!"
)

// Info describes one wire event for documentation and the CLI.
type Info struct {
	Name        string
	Direction   string
	Payload     string
	Description string
}

// Catalog lists every wire event in protocol order.
func Catalog() []Info {
	return []Info{
		{JoinRoom, "client", "string room id", "Join a room's broadcast group."},
		{LeaveRoom, "client", "string room id", "Leave a room's broadcast group."},
		{ChatMessage, "client", "{content, senderType, senderId?, chatRoomId}", "Persist a message and broadcast it to the room."},
		{RequestAIResponse, "client", "{message, chatRoomId, characterId}", "Ask a character to reply in the room."},
		{Message, "server", "{text, senderId, timestamp}", "Greeting sent on connect."},
		{JoinedRoom, "server", "{chatRoomId, message}", "Acknowledges join-room to the sender."},
		{LeftRoom, "server", "{chatRoomId, message}", "Acknowledges leave-room to the sender."},
		{NewMessage, "server", "{id, content, senderType, senderId?, chatRoomId, createdAt}", "A persisted message, sent to every room member."},
		{Error, "server", "{message}", "A failure, sent only to the originating connection."},
	}
}
