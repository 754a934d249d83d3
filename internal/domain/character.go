package domain

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Character is an AI persona that can answer in a room.
type Character struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"notblank,max=100"`
	SystemPrompt string    `json:"systemPrompt" validate:"notblank"`
	Description  string    `json:"description,omitempty" validate:"max=2000"`
	Greeting     string    `json:"greeting,omitempty"`
	Model        string    `json:"model,omitempty"`
	Temperature  float64   `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate runs validation checks on the character definition.
func (c *Character) Validate() error {
	return ValidateStruct(c)
}

var nameFolder = cases.Fold()

// CharacterNameKey returns the case-folded, trimmed form of a character name
// used to detect duplicates across imports.
func CharacterNameKey(name string) string {
	return nameFolder.String(strings.TrimSpace(name))
}

// CharacterRepository reads and writes character definitions.
type CharacterRepository interface {
	// FindCharacterByID returns (nil, nil) when no character has the id.
	FindCharacterByID(ctx context.Context, id string) (*Character, error)
	CreateCharacter(ctx context.Context, c Character) (*Character, error)
	ListCharacters(ctx context.Context) ([]Character, error)
	// UpsertCharacterByName replaces the character whose folded name matches
	// c.Name, or creates it. The bool reports whether a record was created.
	UpsertCharacterByName(ctx context.Context, c Character) (*Character, bool, error)
}
