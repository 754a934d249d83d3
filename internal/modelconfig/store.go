// Package modelconfig holds the named model configurations characters can
// select from.
package modelconfig

import (
	"sort"
	"strings"
	"sync"

	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
)

// DefaultName is the name of the config seeded from the environment.
const DefaultName = "default"

// Store is a concurrency-safe set of model configs keyed by name. Exactly
// one config is the default while the store is non-empty.
type Store struct {
	mu      sync.RWMutex
	configs map[string]domain.ModelConfig
	def     string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{configs: make(map[string]domain.ModelConfig)}
}

// NewStoreFromConfig seeds a store with the LLM_* settings as the default
// config.
func NewStoreFromConfig(cfg config.Provider) (*Store, error) {
	s := NewStore()
	seed := domain.ModelConfig{
		Name:     DefaultName,
		Provider: cfg.GetLLMProvider(),
		Model:    cfg.GetLLMModel(),
		BaseURL:  cfg.GetLLMBaseURL(),
		APIKey:   cfg.GetLLMAPIKey(),
		Default:  true,
	}
	if err := s.Put(seed); err != nil {
		return nil, err
	}
	return s, nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Put validates and stores cfg, replacing any config with the same name.
// A config marked Default takes the default from the previous holder; the
// first config stored becomes the default regardless.
func (s *Store) Put(cfg domain.ModelConfig) error {
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Provider = strings.ToLower(cfg.Provider)
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(cfg.Name)
	if cfg.Default || s.def == "" || s.def == k {
		s.setDefaultLocked(k)
	}
	cfg.Default = s.def == k
	s.configs[k] = cfg
	return nil
}

func (s *Store) setDefaultLocked(k string) {
	if prev, ok := s.configs[s.def]; ok && s.def != k {
		prev.Default = false
		s.configs[s.def] = prev
	}
	s.def = k
}

// Get returns the config named name.
func (s *Store) Get(name string) (domain.ModelConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[key(name)]
	return cfg, ok
}

// Default returns the default config.
func (s *Store) Default() (domain.ModelConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[s.def]
	return cfg, ok
}

// List returns every config sorted by name.
func (s *Store) List() []domain.ModelConfig {
	s.mu.RLock()
	out := make([]domain.ModelConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return key(out[i].Name) < key(out[j].Name) })
	return out
}

// Delete removes the config named name. Removing the default promotes the
// alphabetically first remaining config.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(name)
	if _, ok := s.configs[k]; !ok {
		return &domain.NotFoundError{Kind: "model config", ID: name}
	}
	delete(s.configs, k)

	if s.def != k {
		return nil
	}
	s.def = ""
	next := ""
	for candidate := range s.configs {
		if next == "" || candidate < next {
			next = candidate
		}
	}
	if next != "" {
		cfg := s.configs[next]
		cfg.Default = true
		s.configs[next] = cfg
		s.def = next
	}
	return nil
}
