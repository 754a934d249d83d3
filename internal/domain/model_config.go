package domain

// Provider names understood by the LLM factory.
const (
	ProviderOpenAI   = "openai"
	ProviderZAI      = "zai"
	ProviderOllama   = "ollama"
	ProviderTemplate = "template"
)

// ModelConfig names a model on a provider backend. Characters refer to a
// config by Name; an empty reference selects the default config.
type ModelConfig struct {
	Name        string  `json:"name" validate:"notblank,max=64"`
	Provider    string  `json:"provider" validate:"oneof=openai zai ollama template"`
	Model       string  `json:"model"`
	BaseURL     string  `json:"baseUrl,omitempty" validate:"omitempty,url"`
	APIKey      string  `json:"apiKey,omitempty"`
	Temperature float64 `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	MaxTokens   int     `json:"maxTokens,omitempty" validate:"gte=0"`
	Default     bool    `json:"default"`
}

// Validate runs validation checks on the model config.
func (m *ModelConfig) Validate() error {
	if err := ValidateStruct(m); err != nil {
		return err
	}
	if m.Provider != ProviderTemplate && m.Model == "" {
		return &ValidationError{Field: "model", Reason: "is required"}
	}
	return nil
}

// Redacted returns a copy safe to send to clients.
func (m ModelConfig) Redacted() ModelConfig {
	if m.APIKey != "" {
		m.APIKey = "****"
	}
	return m
}
