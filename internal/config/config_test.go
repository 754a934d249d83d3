package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetServerAddr())
	assert.Equal(t, StorageMemory, cfg.GetStorageDriver())
	assert.Equal(t, "template", cfg.GetLLMProvider())
	assert.Equal(t, 10, cfg.GetAIHistoryLimit())
	assert.Equal(t, 60*time.Second, cfg.GetAITimeout())
	assert.True(t, cfg.GetRoomsRequireRegistration())
	assert.Equal(t, 256, cfg.GetWSSendBuffer())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("AI_TIMEOUT", "3s")
	t.Setenv("AI_HISTORY_LIMIT", "25")
	t.Setenv("ROOMS_REQUIRE_REGISTRATION", "false")
	t.Setenv("LLM_PROVIDER", "Ollama")
	t.Setenv("WS_MAX_MESSAGE_SIZE", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.GetAITimeout())
	assert.Equal(t, 25, cfg.GetAIHistoryLimit())
	assert.False(t, cfg.GetRoomsRequireRegistration())
	assert.Equal(t, "ollama", cfg.GetLLMProvider())
	assert.Equal(t, int64(1024), cfg.GetWSMaxMessageSize())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DB_QUERY_TIMEOUT", "soon")
	t.Setenv("WS_SEND_BUFFER", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.GetDBQueryTimeout())
	assert.Equal(t, 256, cfg.GetWSSendBuffer())
}

func TestLoad_SurrealRequiresConnectionSettings(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "surreal")
	t.Setenv("SURREAL_URL", "")
	t.Setenv("SURREAL_NS", "")
	t.Setenv("SURREAL_DB", "")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *Error
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORAGE_DRIVER")
}
