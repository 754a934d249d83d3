package database

import (
	"context"
	"errors"

	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
)

// CharacterStore persists character definitions in SurrealDB.
type CharacterStore struct {
	client Client[CharacterRecord]
}

var _ domain.CharacterRepository = (*CharacterStore)(nil)

// NewCharacterStore creates a character store over conn.
func NewCharacterStore(conn DBConnection, cfg config.Provider, opts ...ClientOption[CharacterRecord]) (*CharacterStore, error) {
	client, err := NewClient(conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &CharacterStore{client: client}, nil
}

// FindCharacterByID returns (nil, nil) when the id is unknown or malformed.
func (s *CharacterStore) FindCharacterByID(ctx context.Context, id string) (*domain.Character, error) {
	rid, err := ParseRecordID(TableCharacters, id)
	if err != nil {
		return nil, nil
	}

	rec, err := s.client.Select(ctx, rid)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find character", Err: err}
	}

	out := rec.toDomain()
	return &out, nil
}

func (s *CharacterStore) CreateCharacter(ctx context.Context, c domain.Character) (*domain.Character, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	data := characterRecordFrom(c)
	data.CreatedAt = now()

	rec, err := s.client.Create(ctx, TableCharacters, data)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create character", Err: err}
	}
	out := rec.toDomain()
	return &out, nil
}

func (s *CharacterStore) ListCharacters(ctx context.Context) ([]domain.Character, error) {
	recs, err := s.client.Query(ctx, "SELECT * FROM type::table($table) ORDER BY created_at ASC", map[string]any{"table": TableCharacters})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list characters", Err: err}
	}

	out := make([]domain.Character, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (s *CharacterStore) UpsertCharacterByName(ctx context.Context, c domain.Character) (*domain.Character, bool, error) {
	if err := c.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.client.QueryOne(ctx, "SELECT * FROM type::table($table) WHERE name_key = $name_key",
		map[string]any{"table": TableCharacters, "name_key": domain.CharacterNameKey(c.Name)})
	if err != nil {
		return nil, false, &domain.PersistenceError{Op: "find character by name", Err: err}
	}
	if existing == nil {
		created, err := s.CreateCharacter(ctx, c)
		return created, err == nil, err
	}

	data := characterRecordFrom(c)
	rec, err := s.client.QueryOne(ctx, "UPDATE $id MERGE $data", map[string]any{"id": *existing.ID, "data": data})
	if err != nil {
		return nil, false, &domain.PersistenceError{Op: "update character", Err: err}
	}
	if rec == nil {
		return nil, false, &domain.PersistenceError{Op: "update character", Err: NewDBError(ErrNotFound, "character vanished during update")}
	}
	out := rec.toDomain()
	return &out, false, nil
}
