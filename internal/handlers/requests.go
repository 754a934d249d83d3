package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/nfrund/charroom/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a CustomValidator sharing the domain's validator and
// its custom rules.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: domain.Validator()}
}

// Validate implements the echo.Validator interface. Failures come back as
// *domain.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	return domain.ValidateStruct(i)
}

// CreateCharacterRequest is the body of POST /api/characters.
type CreateCharacterRequest struct {
	Name         string  `json:"name" validate:"notblank,max=100"`
	SystemPrompt string  `json:"systemPrompt" validate:"notblank"`
	Description  string  `json:"description" validate:"max=2000"`
	Greeting     string  `json:"greeting"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature" validate:"gte=0,lte=2"`
}

// CreateRoomRequest is the body of POST /api/rooms.
type CreateRoomRequest struct {
	Name         string   `json:"name" validate:"notblank,max=100"`
	Description  string   `json:"description" validate:"max=2000"`
	CharacterIDs []string `json:"characterIds"`
}

// PutModelRequest is the body of PUT /api/models/:name.
type PutModelRequest struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	BaseURL     string  `json:"baseUrl"`
	APIKey      string  `json:"apiKey"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	Default     bool    `json:"default"`
}
