package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/middleware"
	"github.com/nfrund/charroom/internal/modelconfig"
)

// ModelHandler serves the model configuration API. API keys are never
// returned.
type ModelHandler struct {
	store *modelconfig.Store
}

// NewModelHandler creates a ModelHandler.
func NewModelHandler(store *modelconfig.Store) *ModelHandler {
	return &ModelHandler{store: store}
}

// List handles GET /api/models.
func (h *ModelHandler) List(c echo.Context) error {
	configs := h.store.List()
	out := make([]domain.ModelConfig, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, cfg.Redacted())
	}
	return c.JSON(http.StatusOK, out)
}

// Put handles PUT /api/models/:name.
func (h *ModelHandler) Put(c echo.Context) error {
	var req PutModelRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, &domain.ValidationError{Field: "body", Reason: "is not valid JSON"})
	}

	cfg := domain.ModelConfig{
		Name:        c.Param("name"),
		Provider:    req.Provider,
		Model:       req.Model,
		BaseURL:     req.BaseURL,
		APIKey:      req.APIKey,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Default:     req.Default,
	}
	if err := h.store.Put(cfg); err != nil {
		return respondError(c, err)
	}

	saved, _ := h.store.Get(cfg.Name)
	middleware.FromContext(c.Request().Context()).Info("Model config saved",
		"name", saved.Name, "provider", saved.Provider, "default", saved.Default)
	return c.JSON(http.StatusOK, saved.Redacted())
}

// Delete handles DELETE /api/models/:name.
func (h *ModelHandler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Param("name")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
