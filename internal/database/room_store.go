package database

import (
	"context"
	"errors"

	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
)

// RoomStore persists chat rooms in SurrealDB.
type RoomStore struct {
	client Client[RoomRecord]
}

var _ domain.RoomRepository = (*RoomStore)(nil)

// NewRoomStore creates a room store over conn.
func NewRoomStore(conn DBConnection, cfg config.Provider, opts ...ClientOption[RoomRecord]) (*RoomStore, error) {
	client, err := NewClient(conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &RoomStore{client: client}, nil
}

func (s *RoomStore) CreateRoom(ctx context.Context, r domain.ChatRoom) (*domain.ChatRoom, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	ids := r.CharacterIDs
	if ids == nil {
		ids = []string{}
	}
	rec, err := s.client.Create(ctx, TableRooms, RoomRecord{
		Name:         r.Name,
		Description:  r.Description,
		CharacterIDs: ids,
		CreatedAt:    now(),
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create room", Err: err}
	}
	out := rec.toDomain()
	return &out, nil
}

// FindRoomByID returns (nil, nil) when the id is unknown or malformed.
func (s *RoomStore) FindRoomByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	rid, err := ParseRecordID(TableRooms, id)
	if err != nil {
		return nil, nil
	}

	rec, err := s.client.Select(ctx, rid)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find room", Err: err}
	}
	out := rec.toDomain()
	return &out, nil
}

func (s *RoomStore) ListRooms(ctx context.Context) ([]domain.ChatRoom, error) {
	recs, err := s.client.Query(ctx, "SELECT * FROM type::table($table) ORDER BY created_at ASC", map[string]any{"table": TableRooms})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list rooms", Err: err}
	}

	out := make([]domain.ChatRoom, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}
