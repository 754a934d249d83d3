// Package app builds the application's service container.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/database"
	"github.com/nfrund/charroom/internal/database/memstore"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/handlers"
	"github.com/nfrund/charroom/internal/llm"
	"github.com/nfrund/charroom/internal/modelconfig"
	"github.com/nfrund/charroom/internal/module"
	"github.com/nfrund/charroom/internal/pubsub"
	"github.com/nfrund/charroom/internal/websocket"
	"github.com/samber/do/v2"
)

// App owns the injector, the modules and the resources that need closing.
type App struct {
	Injector *do.RootScope
	Modules  []module.Module

	closers []func(context.Context) error
}

// Option customizes New.
type Option func(*options)

type options struct {
	tracing *pubsub.TracingConfig
	modules []module.Module
}

// WithTracing overrides the tracing config loaded from the environment.
func WithTracing(cfg pubsub.TracingConfig) Option {
	return func(o *options) { o.tracing = &cfg }
}

// WithModules replaces the default module list.
func WithModules(mods ...module.Module) Option {
	return func(o *options) { o.modules = mods }
}

// New provides the shared services and registers every module.
func New(ctx context.Context, cfg config.Provider, opts ...Option) (*App, error) {
	o := options{modules: NewModules()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Injector: do.New(), Modules: o.modules}
	i := a.Injector
	do.ProvideValue[config.Provider](i, cfg)

	checks, err := a.provideStorage(ctx, cfg)
	if err != nil {
		_ = a.Shutdown(ctx)
		return nil, err
	}
	do.ProvideValue(i, checks)

	models, err := modelconfig.NewStoreFromConfig(cfg)
	if err != nil {
		_ = a.Shutdown(ctx)
		return nil, fmt.Errorf("default model config: %w", err)
	}
	do.ProvideValue(i, models)

	router, err := llm.NewRouter(models, &http.Client{})
	if err != nil {
		_ = a.Shutdown(ctx)
		return nil, err
	}
	do.ProvideValue[llm.Provider](i, router)

	tracingCfg := pubsub.LoadTracingConfigFromEnv()
	if o.tracing != nil {
		tracingCfg = *o.tracing
	}
	tracer, shutdownTracing, err := pubsub.SetupOTel(ctx, tracingCfg)
	if err != nil {
		_ = a.Shutdown(ctx)
		return nil, fmt.Errorf("tracing: %w", err)
	}
	a.closers = append(a.closers, shutdownTracing)

	bus := pubsub.NewWatermillBridge(pubsub.WithTracer(tracer))
	a.closers = append(a.closers, func(context.Context) error { return bus.Close() })
	do.ProvideValue[pubsub.Bus](i, bus)

	do.ProvideValue(i, websocket.NewHub())

	for _, m := range a.Modules {
		if err := m.Register(i); err != nil {
			_ = a.Shutdown(ctx)
			return nil, fmt.Errorf("register module %s: %w", m.Name(), err)
		}
	}
	return a, nil
}

func (a *App) provideStorage(ctx context.Context, cfg config.Provider) (map[string]handlers.HealthChecker, error) {
	i := a.Injector

	switch cfg.GetStorageDriver() {
	case config.StorageMemory:
		store := memstore.New()
		do.ProvideValue[domain.MessageRepository](i, store)
		do.ProvideValue[domain.CharacterRepository](i, store)
		do.ProvideValue[domain.RoomRepository](i, store)
		slog.Warn("Using in-memory storage; data is lost on restart")
		return map[string]handlers.HealthChecker{}, nil

	case config.StorageSurreal:
		conn := database.NewConnection(cfg)
		if err := conn.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		conn.StartMonitoring()

		messages, err := database.NewMessageStore(conn, cfg)
		if err != nil {
			return nil, err
		}
		chars, err := database.NewCharacterStore(conn, cfg)
		if err != nil {
			return nil, err
		}
		rooms, err := database.NewRoomStore(conn, cfg)
		if err != nil {
			return nil, err
		}
		do.ProvideValue[domain.MessageRepository](i, messages)
		do.ProvideValue[domain.CharacterRepository](i, chars)
		do.ProvideValue[domain.RoomRepository](i, rooms)
		return map[string]handlers.HealthChecker{"database": conn}, nil

	default:
		return nil, &config.Error{Msg: "unknown STORAGE_DRIVER " + cfg.GetStorageDriver()}
	}
}

// Shutdown stops every module, then closes shared resources in reverse
// order of creation.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for idx := len(a.Modules) - 1; idx >= 0; idx-- {
		m := a.Modules[idx]
		if err := m.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown module %s: %w", m.Name(), err))
		}
	}
	for idx := len(a.closers) - 1; idx >= 0; idx-- {
		if err := a.closers[idx](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.Injector.Shutdown()
	return errors.Join(errs...)
}
