package chat

import (
	"errors"
	"testing"

	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/llm"
	"github.com/nfrund/charroom/internal/modules/chat/events"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestToTurns(t *testing.T) {
	history := []domain.ChatMessage{
		{Content: "Welcome", SenderType: domain.SenderSystem},
		{Content: "hello", SenderType: domain.SenderUser, SenderID: strPtr("alice")},
		{Content: "well met", SenderType: domain.SenderCharacter, SenderID: strPtr("character:merlin")},
		{Content: "hmph", SenderType: domain.SenderCharacter, SenderID: strPtr("character:morgana")},
		{Content: "what now?", SenderType: domain.SenderUser},
	}

	turns := toTurns(history, "character:merlin", "what now?")

	assert.Equal(t, []llm.Turn{
		{Role: llm.RoleSystem, Content: "Welcome"},
		{Role: llm.RoleUser, Content: "hello", Name: "alice"},
		{Role: llm.RoleAssistant, Content: "well met"},
		{Role: llm.RoleUser, Content: "hmph", Name: "character:morgana"},
	}, turns)
}

func TestToTurns_KeepsDifferentTrailingMessage(t *testing.T) {
	history := []domain.ChatMessage{{Content: "earlier", SenderType: domain.SenderUser}}
	assert.Len(t, toTurns(history, "c", "later"), 1)
	assert.Empty(t, toTurns(nil, "c", "later"))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name  string
		event string
		err   error
		want  string
	}{
		{"validation", events.ChatMessage, &domain.ValidationError{Field: "content", Reason: "is required"}, "validation failed: content is required"},
		{"unknown event", "dance", errUnknownEvent, events.MsgUnknownEvent},
		{"persistence", events.ChatMessage, &domain.PersistenceError{Op: "create", Err: errors.New("x")}, events.MsgSendFailed},
		{"character missing", events.RequestAIResponse, &domain.NotFoundError{Kind: "character", ID: "c"}, events.MsgCharacterNotFound},
		{"room missing", events.JoinRoom, &domain.NotFoundError{Kind: "room", ID: "r"}, events.MsgRoomNotFound},
		{"provider timeout", events.RequestAIResponse, &domain.ProviderError{Kind: domain.ProviderTimeout}, events.MsgAITimeout},
		{"provider failure", events.RequestAIResponse, &domain.ProviderError{Kind: domain.ProviderAuth}, events.MsgAIFailed},
		{"ai persistence", events.RequestAIResponse, &domain.PersistenceError{Op: "create", Err: errors.New("x")}, events.MsgAIFailed},
		{"join failure", events.JoinRoom, errors.New("boom"), events.MsgJoinFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(tt.event, tt.err))
		})
	}
}

func TestDecodeRoomID(t *testing.T) {
	id, err := decodeRoomID([]byte(`"chat_room:1"`))
	assert.NoError(t, err)
	assert.Equal(t, "chat_room:1", id)

	id, err = decodeRoomID([]byte(`{"chatRoomId":"chat_room:2"}`))
	assert.NoError(t, err)
	assert.Equal(t, "chat_room:2", id)

	_, err = decodeRoomID([]byte(`42`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
