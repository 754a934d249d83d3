// Package memstore keeps messages, characters and rooms in process memory.
// It backs STORAGE_DRIVER=memory and the tests of packages above storage.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/charroom/internal/domain"
)

const (
	messagePrefix   = "chat_message:"
	characterPrefix = "character:"
	roomPrefix      = "chat_room:"
)

// Store implements the message, character and room repositories.
type Store struct {
	mu         sync.RWMutex
	messages   map[string][]domain.ChatMessage // room id -> messages in insertion order
	characters map[string]domain.Character
	rooms      map[string]domain.ChatRoom
	last       time.Time
}

var (
	_ domain.MessageRepository   = (*Store)(nil)
	_ domain.CharacterRepository = (*Store)(nil)
	_ domain.RoomRepository      = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		messages:   make(map[string][]domain.ChatMessage),
		characters: make(map[string]domain.Character),
		rooms:      make(map[string]domain.ChatRoom),
	}
}

// now returns strictly increasing UTC timestamps. Callers hold s.mu.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func (s *Store) CreateMessage(ctx context.Context, msg domain.NewChatMessage) (*domain.ChatMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "create message", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := domain.ChatMessage{
		ID:         messagePrefix + uuid.NewString(),
		Content:    msg.Content,
		SenderType: msg.SenderType,
		SenderID:   copyString(msg.SenderID),
		ChatRoomID: msg.ChatRoomID,
		CreatedAt:  s.now(),
	}
	s.messages[msg.ChatRoomID] = append(s.messages[msg.ChatRoomID], out)
	return &out, nil
}

func (s *Store) FindRecentMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "find recent messages", Err: err}
	}
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[roomID]
	start := 0
	if len(all) > limit {
		start = len(all) - limit
	}
	out := make([]domain.ChatMessage, len(all)-start)
	copy(out, all[start:])
	return out, nil
}

func (s *Store) FindCharacterByID(ctx context.Context, id string) (*domain.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "find character", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.characters[normalizeID(characterPrefix, id)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) CreateCharacter(ctx context.Context, c domain.Character) (*domain.Character, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCharacterLocked(c), nil
}

func (s *Store) insertCharacterLocked(c domain.Character) *domain.Character {
	c.ID = characterPrefix + uuid.NewString()
	c.Name = strings.TrimSpace(c.Name)
	c.CreatedAt = s.now()
	s.characters[c.ID] = c
	return &c
}

func (s *Store) ListCharacters(ctx context.Context) ([]domain.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Character, 0, len(s.characters))
	for _, c := range s.characters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpsertCharacterByName(ctx context.Context, c domain.Character) (*domain.Character, bool, error) {
	if err := c.Validate(); err != nil {
		return nil, false, err
	}

	key := domain.CharacterNameKey(c.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.characters {
		if domain.CharacterNameKey(existing.Name) != key {
			continue
		}
		c.ID = id
		c.Name = strings.TrimSpace(c.Name)
		c.CreatedAt = existing.CreatedAt
		s.characters[id] = c
		return &c, false, nil
	}
	return s.insertCharacterLocked(c), true, nil
}

func (s *Store) CreateRoom(ctx context.Context, r domain.ChatRoom) (*domain.ChatRoom, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = roomPrefix + uuid.NewString()
	r.CreatedAt = s.now()
	r.CharacterIDs = append([]string{}, r.CharacterIDs...)
	s.rooms[r.ID] = r
	return &r, nil
}

func (s *Store) FindRoomByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[normalizeID(roomPrefix, id)]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]domain.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ChatRoom, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func normalizeID(prefix, id string) string {
	id = strings.TrimSpace(id)
	if strings.Contains(id, ":") {
		return id
	}
	return prefix + id
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
