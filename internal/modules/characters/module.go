// Package characters boots the character definition watcher.
package characters

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/charroom/internal/characters"
	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/module"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
)

// CharactersModule imports definitions from CHARACTERS_DIR at startup and
// re-imports them as they change.
type CharactersModule struct {
	module.BaseModule
	watcher *characters.Watcher
}

// New creates the characters module.
func New() *CharactersModule {
	return &CharactersModule{}
}

// Name returns the module name.
func (m *CharactersModule) Name() string {
	return "characters"
}

// Register provides an importer reading from the OS filesystem.
func (m *CharactersModule) Register(i do.Injector) error {
	do.Provide(i, func(i do.Injector) (*characters.Importer, error) {
		return characters.NewImporter(afero.NewOsFs(), do.MustInvoke[domain.CharacterRepository](i)), nil
	})
	return nil
}

// Boot starts the watcher when a directory is configured.
func (m *CharactersModule) Boot(ctx context.Context, _ *echo.Group, i do.Injector) error {
	dir := do.MustInvoke[config.Provider](i).GetCharactersDir()
	if dir == "" {
		slog.Debug("CHARACTERS_DIR not set, character watcher disabled")
		return nil
	}

	m.watcher = characters.NewWatcher(dir, do.MustInvoke[*characters.Importer](i))
	return m.watcher.Start(ctx)
}

// Shutdown stops the watcher.
func (m *CharactersModule) Shutdown(ctx context.Context) error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}
