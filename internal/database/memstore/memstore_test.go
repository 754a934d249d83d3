package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/nfrund/charroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Messages(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 1; i <= 5; i++ {
		_, err := s.CreateMessage(ctx, domain.NewChatMessage{
			Content: fmt.Sprintf("m%d", i), SenderType: domain.SenderUser, ChatRoomID: "room-a",
		})
		require.NoError(t, err)
	}
	_, err := s.CreateMessage(ctx, domain.NewChatMessage{Content: "other", SenderType: domain.SenderUser, ChatRoomID: "room-b"})
	require.NoError(t, err)

	recent, err := s.FindRecentMessages(ctx, "room-a", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "m3", recent[0].Content)
	assert.Equal(t, "m5", recent[2].Content)
	for _, m := range recent {
		assert.True(t, strings.HasPrefix(m.ID, "chat_message:"))
		assert.False(t, m.CreatedAt.IsZero())
		assert.Equal(t, "room-a", m.ChatRoomID)
	}

	all, err := s.FindRecentMessages(ctx, "room-a", 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := s.FindRecentMessages(ctx, "room-z", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_CreateMessage_Invalid(t *testing.T) {
	s := New()
	_, err := s.CreateMessage(context.Background(), domain.NewChatMessage{Content: "x", SenderType: "bot", ChatRoomID: "r"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_CreateMessage_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateMessage(ctx, domain.NewChatMessage{Content: "x", SenderType: domain.SenderUser, ChatRoomID: "r"})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestStore_MessagesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()
	sender := "u1"
	_, err := s.CreateMessage(ctx, domain.NewChatMessage{Content: "x", SenderType: domain.SenderUser, SenderID: &sender, ChatRoomID: "r"})
	require.NoError(t, err)
	sender = "mutated"

	msgs, err := s.FindRecentMessages(ctx, "r", 1)
	require.NoError(t, err)
	assert.Equal(t, "u1", *msgs[0].SenderID)
}

func TestStore_Characters(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateCharacter(ctx, domain.Character{Name: " Aria ", SystemPrompt: "You are Aria."})
	require.NoError(t, err)
	assert.Equal(t, "Aria", created.Name)

	found, err := s.FindCharacterByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "You are Aria.", found.SystemPrompt)

	bare := strings.TrimPrefix(created.ID, "character:")
	found, err = s.FindCharacterByID(ctx, bare)
	require.NoError(t, err)
	assert.NotNil(t, found)

	missing, err := s.FindCharacterByID(ctx, "character:nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	updated, wasCreated, err := s.UpsertCharacterByName(ctx, domain.Character{Name: "ARIA", SystemPrompt: "Updated"})
	require.NoError(t, err)
	assert.False(t, wasCreated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, wasCreated, err = s.UpsertCharacterByName(ctx, domain.Character{Name: "Nova", SystemPrompt: "p"})
	require.NoError(t, err)
	assert.True(t, wasCreated)

	list, err := s.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ARIA", list[0].Name)
}

func TestStore_Rooms(t *testing.T) {
	ctx := context.Background()
	s := New()

	room, err := s.CreateRoom(ctx, domain.ChatRoom{Name: "Lobby"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(room.ID, "chat_room:"))
	assert.NotNil(t, room.CharacterIDs)

	found, err := s.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Lobby", found.Name)

	missing, err := s.FindRoomByID(ctx, "chat_room:none")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.CreateRoom(ctx, domain.ChatRoom{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateMessage(ctx, domain.NewChatMessage{Content: fmt.Sprint(i), SenderType: domain.SenderUser, ChatRoomID: "busy"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	msgs, err := s.FindRecentMessages(ctx, "busy", 100)
	require.NoError(t, err)
	assert.Len(t, msgs, 50)
}
