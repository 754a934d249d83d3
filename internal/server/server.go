package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/charroom/internal/app"
	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/handlers"
	"github.com/nfrund/charroom/internal/middleware"
)

// Server holds the HTTP server and the application behind it.
type Server struct {
	E   *echo.Echo
	App *app.App
	Cfg config.Provider

	cancel context.CancelFunc
}

// New builds the application container, the echo instance and its routes,
// and boots every module. The modules live until Shutdown.
func New(cfg config.Provider, opts ...app.Option) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a, err := app.New(ctx, cfg, opts...)
	if err != nil {
		cancel()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	setupErrorHandling(e)

	s := &Server{E: e, App: a, Cfg: cfg, cancel: cancel}
	s.RegisterRoutes()

	root := e.Group("")
	for _, m := range a.Modules {
		if err := m.Boot(ctx, root, a.Injector); err != nil {
			cancel()
			_ = a.Shutdown(context.Background())
			return nil, fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
		slog.Debug("Module booted", "module", m.Name())
	}
	return s, nil
}

// Shutdown stops the HTTP server, then the modules and shared resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if err := s.E.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	return s.App.Shutdown(ctx)
}
