package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConnection connects to the SurrealDB named by .env.test or the
// environment, skipping when none is configured.
func setupTestConnection(t *testing.T) (*Connection, *config.Config) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	_ = godotenv.Load("../../.env.test")
	if os.Getenv("SURREAL_URL") == "" {
		t.Skip("SURREAL_URL not set; skipping SurrealDB integration test")
	}

	t.Setenv("STORAGE_DRIVER", config.StorageSurreal)
	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := NewConnection(cfg)
	require.NoError(t, conn.Connect(ctx), "failed to connect to test database")
	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})
	return conn, cfg
}

func TestSurreal_MessageRoundTrip(t *testing.T) {
	conn, cfg := setupTestConnection(t)
	ctx := context.Background()

	store, err := NewMessageStore(conn, cfg)
	require.NoError(t, err)

	room := "chat_room:it_" + time.Now().Format("150405.000000")
	for _, content := range []string{"one", "two", "three"} {
		_, err := store.CreateMessage(ctx, domain.NewChatMessage{Content: content, SenderType: domain.SenderUser, ChatRoomID: room})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	msgs, err := store.FindRecentMessages(ctx, room, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Content)
	assert.Equal(t, "three", msgs[1].Content)
	assert.False(t, msgs[1].CreatedAt.IsZero())
}

func TestSurreal_CharacterUpsert(t *testing.T) {
	conn, cfg := setupTestConnection(t)
	ctx := context.Background()

	store, err := NewCharacterStore(conn, cfg)
	require.NoError(t, err)

	name := "Integration " + time.Now().Format("150405.000000")
	first, created, err := store.UpsertCharacterByName(ctx, domain.Character{Name: name, SystemPrompt: "v1"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := store.UpsertCharacterByName(ctx, domain.Character{Name: name, SystemPrompt: "v2"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	found, err := store.FindCharacterByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "v2", found.SystemPrompt)
}
