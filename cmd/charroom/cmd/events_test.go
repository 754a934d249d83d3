package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintEvents_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printEvents(&buf, "table"))

	out := buf.String()
	assert.Contains(t, out, "join-room")
	assert.Contains(t, out, "request-ai-response")
	assert.Contains(t, out, "chat.room.message")
}

func TestPrintEvents_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printEvents(&buf, "json"))

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.NotEmpty(t, decoded["events"])
	assert.Len(t, decoded["topics"], 2)
}

func TestPrintEvents_UnknownFormat(t *testing.T) {
	assert.Error(t, printEvents(&bytes.Buffer{}, "yaml"))
}
