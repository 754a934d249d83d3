package characters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nfrund/charroom/internal/database/memstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReimportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ada.json"), []byte(`{"name":"Ada","systemPrompt":"You count."}`), 0o644))

	store := memstore.New()
	w := NewWatcher(dir, NewImporter(afero.NewOsFs(), store))
	imported := make(chan string, 16)
	w.onImport = func(path string, _ Result, _ error) {
		select {
		case imported <- path:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Close()

	all, err := store.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "initial import")

	newFile := filepath.Join(dir, "grace.json")
	require.NoError(t, os.WriteFile(newFile, []byte(`{"name":"Grace","systemPrompt":"You debug."}`), 0o644))

	select {
	case path := <-imported:
		assert.Equal(t, newFile, path)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not import the new file")
	}

	assert.Eventually(t, func() bool {
		all, err := store.ListCharacters(ctx)
		return err == nil && len(all) == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	w := NewWatcher(t.TempDir(), NewImporter(afero.NewOsFs(), memstore.New()))
	require.NoError(t, w.Start(context.Background()))
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcher_MissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent"), NewImporter(afero.NewOsFs(), memstore.New()))
	assert.Error(t, w.Start(context.Background()))
}
