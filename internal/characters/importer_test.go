package characters

import (
	"context"
	"errors"
	"testing"

	"github.com/nfrund/charroom/internal/database/memstore"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestParse(t *testing.T) {
	defs, err := Parse([]byte(`{"name":"Merlin","systemPrompt":"You are a wizard."}`))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Merlin", defs[0].Name)

	defs, err = Parse([]byte(` [{"name":"A","systemPrompt":"a"},{"name":"B","systemPrompt":"b"}]`))
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	_, err = Parse([]byte("  "))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Parse([]byte(`{"name":`))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImportFile_CreatesThenUpdates(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := memstore.New()
	im := NewImporter(fs, store)
	ctx := context.Background()

	writeFile(t, fs, "/chars/merlin.json", `{"name":"Merlin","systemPrompt":"You are a wizard.","greeting":"Hail!"}`)
	res, err := im.ImportFile(ctx, "/chars/merlin.json")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)

	writeFile(t, fs, "/chars/merlin.json", `{"name":"  MERLIN ","systemPrompt":"You are an old wizard."}`)
	res, err = im.ImportFile(ctx, "/chars/merlin.json")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)

	all, err := store.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "You are an old wizard.", all[0].SystemPrompt)
}

func TestImportFile_SkipsInvalidAndDuplicates(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := memstore.New()
	im := NewImporter(fs, store)

	writeFile(t, fs, "/all.json", `[
		{"name":"Ada","systemPrompt":"You count."},
		{"name":"","systemPrompt":"nameless"},
		{"name":"ada","systemPrompt":"dupe"},
		{"name":"Grace","systemPrompt":"You debug.","temperature":5}
	]`)

	res, err := im.ImportFile(context.Background(), "/all.json")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Failed, 3)
	assert.ErrorIs(t, res.Failed[0], domain.ErrValidation)
	assert.ErrorContains(t, res.Failed[1], "duplicate")
	assert.Error(t, res.Err())
}

func TestImportFile_Missing(t *testing.T) {
	im := NewImporter(afero.NewMemMapFs(), memstore.New())
	_, err := im.ImportFile(context.Background(), "/nope.json")
	assert.Error(t, err)
}

func TestImportPath_Directory(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := memstore.New()
	im := NewImporter(fs, store)

	writeFile(t, fs, "/chars/b.json", `{"name":"Bard","systemPrompt":"Sing."}`)
	writeFile(t, fs, "/chars/a.JSON", `{"name":"Alchemist","systemPrompt":"Brew."}`)
	writeFile(t, fs, "/chars/broken.json", `{`)
	writeFile(t, fs, "/chars/notes.txt", `ignored`)
	writeFile(t, fs, "/chars/.hidden.json", `{"name":"Ghost","systemPrompt":"Boo."}`)

	res, err := im.ImportPath(context.Background(), "/chars")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Len(t, res.Failed, 1)

	all, err := store.ListCharacters(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

type failingRepo struct {
	domain.CharacterRepository
}

func (failingRepo) UpsertCharacterByName(context.Context, domain.Character) (*domain.Character, bool, error) {
	return nil, false, &domain.PersistenceError{Op: "upsert character", Err: errors.New("disk on fire")}
}

func TestImportPath_StopsOnPersistenceError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/chars/a.json", `{"name":"A","systemPrompt":"a"}`)
	writeFile(t, fs, "/chars/b.json", `{"name":"B","systemPrompt":"b"}`)

	_, err := NewImporter(fs, failingRepo{}).ImportPath(context.Background(), "/chars")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestIsDefinitionFile(t *testing.T) {
	assert.True(t, IsDefinitionFile("/x/merlin.json"))
	assert.True(t, IsDefinitionFile("MERLIN.JSON"))
	assert.False(t, IsDefinitionFile("/x/.merlin.json.swp"))
	assert.False(t, IsDefinitionFile("/x/.merlin.json"))
	assert.False(t, IsDefinitionFile("readme.md"))
}
