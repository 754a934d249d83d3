package modelconfig

import (
	"testing"

	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreFromConfig(t *testing.T) {
	s, err := NewStoreFromConfig(&config.Config{LLMProvider: "ollama", LLMModel: "llama3"})
	require.NoError(t, err)

	def, ok := s.Default()
	require.True(t, ok)
	assert.Equal(t, DefaultName, def.Name)
	assert.Equal(t, domain.ProviderOllama, def.Provider)
	assert.True(t, def.Default)
}

func TestNewStoreFromConfig_MissingModel(t *testing.T) {
	_, err := NewStoreFromConfig(&config.Config{LLMProvider: "openai"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_FirstPutBecomesDefault(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put(domain.ModelConfig{Name: "offline", Provider: "template"}))

	def, ok := s.Default()
	require.True(t, ok)
	assert.Equal(t, "offline", def.Name)
}

func TestStore_PutDefaultMovesFlag(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put(domain.ModelConfig{Name: "offline", Provider: "template"}))
	require.NoError(t, s.Put(domain.ModelConfig{Name: "gpt", Provider: "openai", Model: "gpt-4o-mini", Default: true}))

	def, _ := s.Default()
	assert.Equal(t, "gpt", def.Name)

	offline, ok := s.Get("OFFLINE")
	require.True(t, ok)
	assert.False(t, offline.Default)

	defaults := 0
	for _, cfg := range s.List() {
		if cfg.Default {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestStore_ReplaceKeepsDefault(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put(domain.ModelConfig{Name: "local", Provider: "ollama", Model: "a"}))
	require.NoError(t, s.Put(domain.ModelConfig{Name: "local", Provider: "ollama", Model: "b"}))

	def, _ := s.Default()
	assert.Equal(t, "b", def.Model)
	assert.True(t, def.Default)
}

func TestStore_PutInvalid(t *testing.T) {
	s := NewStore()
	err := s.Put(domain.ModelConfig{Name: "x", Provider: "carrier-pigeon"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, s.List())
}

func TestStore_DeletePromotesDefault(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put(domain.ModelConfig{Name: "zeta", Provider: "template", Default: true}))
	require.NoError(t, s.Put(domain.ModelConfig{Name: "beta", Provider: "template"}))
	require.NoError(t, s.Put(domain.ModelConfig{Name: "alpha", Provider: "template"}))

	require.NoError(t, s.Delete("zeta"))

	def, ok := s.Default()
	require.True(t, ok)
	assert.Equal(t, "alpha", def.Name)
	assert.True(t, def.Default)
}

func TestStore_DeleteMissing(t *testing.T) {
	err := NewStore().Delete("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteLast(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put(domain.ModelConfig{Name: "only", Provider: "template"}))
	require.NoError(t, s.Delete("only"))

	_, ok := s.Default()
	assert.False(t, ok)
}
