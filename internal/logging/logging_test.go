package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", "info")

	logger.Debug("hidden")
	logger.Info("joined room", "room_id", "chat_room:lobby")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "joined room", entry["msg"])
	assert.Equal(t, "chat_room:lobby", entry["room_id"])
}

func TestNewWithWriter_TextDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "", "debug")

	logger.Debug("ping")
	assert.Contains(t, buf.String(), "msg=ping")
	assert.Contains(t, buf.String(), "source=")
}
