package app

import (
	"github.com/nfrund/charroom/internal/module"
	"github.com/nfrund/charroom/internal/modules/characters"
	"github.com/nfrund/charroom/internal/modules/chat"
)

// NewModules returns the list of all active modules for the application.
// This is the single source of truth for which features are enabled.
func NewModules() []module.Module {
	return []module.Module{
		characters.New(),
		chat.New(),
	}
}
