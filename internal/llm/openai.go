package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nfrund/charroom/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default base URLs for the OpenAI-compatible backends.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultZAIBaseURL    = "https://api.z.ai/api/paas/v4"
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
)

// DefaultBaseURL returns the base URL used for provider when none is set.
func DefaultBaseURL(provider string) string {
	switch provider {
	case domain.ProviderZAI:
		return DefaultZAIBaseURL
	case domain.ProviderOllama:
		return DefaultOllamaBaseURL
	default:
		return DefaultOpenAIBaseURL
	}
}

// OpenAIConfig configures an OpenAI-compatible chat-completions provider.
type OpenAIConfig struct {
	// Provider is the backend name reported in errors (openai, zai, ollama).
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// OpenAIProvider talks to any backend that serves the OpenAI chat
// completions API: OpenAI itself, Z.ai and Ollama's /v1 endpoint.
type OpenAIProvider struct {
	client openai.Client
	cfg    OpenAIConfig
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider. Retries are disabled; the relay
// reports failures to the user instead.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Provider == "" {
		cfg.Provider = domain.ProviderOpenAI
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL(cfg.Provider)
	}

	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

func (p *OpenAIProvider) Name() string { return p.cfg.Provider }

// Generate sends the system prompt, history and message as a single chat
// completion request.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := p.cfg.Model
	if model == "" {
		return nil, &domain.ProviderError{Kind: domain.ProviderBadResponse, Provider: p.Name(), Err: errors.New("no model configured")}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: buildMessages(req),
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.cfg.Temperature
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	if len(completion.Choices) == 0 {
		return nil, &domain.ProviderError{Kind: domain.ProviderBadResponse, Provider: p.Name(), Err: errors.New("no choices in completion")}
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return nil, &domain.ProviderError{Kind: domain.ProviderBadResponse, Provider: p.Name(), Err: errors.New("empty completion")}
	}

	return &Response{
		Content: content,
		Model:   completion.Model,
		Usage: Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
		},
	}, nil
}

func buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	for _, turn := range req.History {
		switch turn.Role {
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(turn.Content))
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(turn.Content))
		default:
			msgs = append(msgs, openai.UserMessage(turn.Content))
		}
	}
	if req.Message != "" {
		msgs = append(msgs, openai.UserMessage(req.Message))
	}
	return msgs
}

func (p *OpenAIProvider) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.ProviderError{Kind: domain.ProviderTimeout, Provider: p.Name(), Err: err}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		kind := domain.ProviderBadResponse
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			kind = domain.ProviderAuth
		case apiErr.StatusCode == http.StatusTooManyRequests:
			kind = domain.ProviderRateLimit
		case apiErr.StatusCode >= http.StatusInternalServerError:
			kind = domain.ProviderUnavailable
		}
		return &domain.ProviderError{Kind: kind, Provider: p.Name(), Err: err}
	}

	return &domain.ProviderError{Kind: domain.ProviderUnavailable, Provider: p.Name(), Err: err}
}
