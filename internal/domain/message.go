package domain

import (
	"context"
	"time"
)

// SenderType identifies who authored a chat message.
type SenderType string

const (
	SenderUser      SenderType = "user"
	SenderCharacter SenderType = "character"
	SenderSystem    SenderType = "system"
)

// Valid reports whether s is one of the known sender types.
func (s SenderType) Valid() bool {
	switch s {
	case SenderUser, SenderCharacter, SenderSystem:
		return true
	}
	return false
}

// MaxMessageLength bounds the content of a single chat message.
const MaxMessageLength = 8000

// ChatMessage is a persisted message. It is immutable once stored.
type ChatMessage struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	SenderType SenderType `json:"senderType"`
	SenderID   *string    `json:"senderId,omitempty"`
	ChatRoomID string     `json:"chatRoomId"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewChatMessage is the validated input for persisting a message. The store
// assigns ID and CreatedAt.
type NewChatMessage struct {
	Content    string     `json:"content" validate:"notblank,max=8000"`
	SenderType SenderType `json:"senderType" validate:"required,sendertype"`
	SenderID   *string    `json:"senderId,omitempty"`
	ChatRoomID string     `json:"chatRoomId" validate:"notblank"`
}

// Validate runs validation checks on the message input.
func (m *NewChatMessage) Validate() error {
	return ValidateStruct(m)
}

// MessageRepository persists and reads chat messages.
type MessageRepository interface {
	// CreateMessage stores msg and returns the record with its assigned id
	// and timestamp.
	CreateMessage(ctx context.Context, msg NewChatMessage) (*ChatMessage, error)

	// FindRecentMessages returns up to limit of the newest messages in the
	// room, ordered oldest first.
	FindRecentMessages(ctx context.Context, roomID string, limit int) ([]ChatMessage, error)
}
