package domain

import (
	"context"
	"time"
)

// ChatRoom is a registered room that connections can join.
type ChatRoom struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"notblank,max=100"`
	Description  string    `json:"description,omitempty" validate:"max=2000"`
	CharacterIDs []string  `json:"characterIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate runs validation checks on the room.
func (r *ChatRoom) Validate() error {
	return ValidateStruct(r)
}

// RoomRepository stores chat rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, r ChatRoom) (*ChatRoom, error)
	// FindRoomByID returns (nil, nil) when no room has the id.
	FindRoomByID(ctx context.Context, id string) (*ChatRoom, error)
	ListRooms(ctx context.Context) ([]ChatRoom, error)
}
