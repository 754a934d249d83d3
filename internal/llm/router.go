package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nfrund/charroom/internal/domain"
)

// ConfigSource resolves model configs by name.
type ConfigSource interface {
	Get(name string) (domain.ModelConfig, bool)
	Default() (domain.ModelConfig, bool)
}

// Router picks the backend for each request from the model config named by
// Request.Model.
type Router struct {
	configs    ConfigSource
	httpClient *http.Client
	scripted   *ScriptedProvider
}

var _ Provider = (*Router)(nil)

// NewRouter creates a router over configs. httpClient may be nil.
func NewRouter(configs ConfigSource, httpClient *http.Client) (*Router, error) {
	scripted, err := NewScriptedProvider("")
	if err != nil {
		return nil, err
	}
	return &Router{configs: configs, httpClient: httpClient, scripted: scripted}, nil
}

func (r *Router) Name() string { return "router" }

// Resolve returns the provider and config that serve modelName.
func (r *Router) Resolve(modelName string) (Provider, domain.ModelConfig, error) {
	var (
		cfg domain.ModelConfig
		ok  bool
	)
	if modelName == "" {
		cfg, ok = r.configs.Default()
	} else {
		cfg, ok = r.configs.Get(modelName)
	}
	if !ok {
		name := modelName
		if name == "" {
			name = "default"
		}
		return nil, domain.ModelConfig{}, &domain.NotFoundError{Kind: "model config", ID: name}
	}

	p, err := NewFromModelConfig(cfg, r.httpClient, r.scripted)
	return p, cfg, err
}

func (r *Router) Generate(ctx context.Context, req Request) (*Response, error) {
	p, cfg, err := r.Resolve(req.Model)
	if err != nil {
		return nil, &domain.ProviderError{Kind: domain.ProviderBadResponse, Provider: r.Name(), Err: err}
	}
	if req.Temperature == 0 {
		req.Temperature = cfg.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = cfg.MaxTokens
	}
	return p.Generate(ctx, req)
}

// NewFromModelConfig builds the provider for cfg. scripted is reused for
// template configs and may be nil.
func NewFromModelConfig(cfg domain.ModelConfig, httpClient *http.Client, scripted *ScriptedProvider) (Provider, error) {
	switch cfg.Provider {
	case domain.ProviderTemplate:
		if scripted != nil {
			return scripted, nil
		}
		return NewScriptedProvider("")
	case domain.ProviderOpenAI, domain.ProviderZAI, domain.ProviderOllama:
		return NewOpenAIProvider(OpenAIConfig{
			Provider:    cfg.Provider,
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			HTTPClient:  httpClient,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
