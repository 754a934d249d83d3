package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/middleware"
)

// CharacterHandler serves the character API.
type CharacterHandler struct {
	characters domain.CharacterRepository
}

// NewCharacterHandler creates a CharacterHandler.
func NewCharacterHandler(characters domain.CharacterRepository) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

// List handles GET /api/characters.
func (h *CharacterHandler) List(c echo.Context) error {
	list, err := h.characters.ListCharacters(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if list == nil {
		list = []domain.Character{}
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /api/characters/:id.
func (h *CharacterHandler) Get(c echo.Context) error {
	id := c.Param("id")
	character, err := h.characters.FindCharacterByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if character == nil {
		return respondError(c, &domain.NotFoundError{Kind: "character", ID: id})
	}
	return c.JSON(http.StatusOK, character)
}

// Create handles POST /api/characters.
func (h *CharacterHandler) Create(c echo.Context) error {
	var req CreateCharacterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	created, err := h.characters.CreateCharacter(ctx, domain.Character{
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		Description:  req.Description,
		Greeting:     req.Greeting,
		Model:        req.Model,
		Temperature:  req.Temperature,
	})
	if err != nil {
		return respondError(c, err)
	}

	middleware.FromContext(ctx).Info("Character created", "character_id", created.ID, "name", created.Name)
	return c.JSON(http.StatusCreated, created)
}
