// Package llm generates character replies through chat-completion backends.
package llm

import (
	"context"
)

// Role of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message in the conversation.
type Turn struct {
	Role    Role
	Content string
	// Name optionally identifies the speaker for multi-user rooms.
	Name string
}

// Request asks a provider for the next character reply.
type Request struct {
	// Model names a model config; empty selects the default config.
	Model         string
	CharacterName string
	SystemPrompt  string
	History       []Turn
	Message       string
	Temperature   float64
	MaxTokens     int
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Response is a generated reply.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Provider generates replies. Implementations return *domain.ProviderError
// for every failure.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}
