package chat

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/llm"
	"github.com/nfrund/charroom/internal/module"
	"github.com/nfrund/charroom/internal/pubsub"
	"github.com/nfrund/charroom/internal/websocket"
	"github.com/samber/do/v2"
)

// ChatModule wires the real-time relay: the socket route, the relay service
// and the bus subscriber that fans messages out to rooms.
type ChatModule struct {
	module.BaseModule
	cancel context.CancelFunc
}

// New creates the chat module.
func New() *ChatModule {
	return &ChatModule{}
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// Register provides the relay service.
func (m *ChatModule) Register(i do.Injector) error {
	do.Provide(i, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[config.Provider](i)
		return NewService(ServiceDeps{
			Messages:   do.MustInvoke[domain.MessageRepository](i),
			Characters: do.MustInvoke[domain.CharacterRepository](i),
			Rooms:      do.MustInvoke[domain.RoomRepository](i),
			Provider:   do.MustInvoke[llm.Provider](i),
			Hub:        do.MustInvoke[*websocket.Hub](i),
			Publisher:  do.MustInvoke[pubsub.Bus](i),
		}, Options{
			HistoryLimit:             cfg.GetAIHistoryLimit(),
			AITimeout:                cfg.GetAITimeout(),
			RoomsRequireRegistration: cfg.GetRoomsRequireRegistration(),
		}), nil
	})
	return nil
}

// Boot starts the subscriber and mounts GET /ws on g.
func (m *ChatModule) Boot(ctx context.Context, g *echo.Group, i do.Injector) error {
	ctx, m.cancel = context.WithCancel(ctx)

	service, err := do.Invoke[*Service](i)
	if err != nil {
		return err
	}
	hub := do.MustInvoke[*websocket.Hub](i)
	bus := do.MustInvoke[pubsub.Bus](i)
	cfg := do.MustInvoke[config.Provider](i)

	if err := NewSubscriber(bus, hub).Start(ctx); err != nil {
		return err
	}

	slog.Info("Booting ChatModule: Setting up routes...")
	handler := NewHandler(ctx, hub, service, websocket.Options{
		PingInterval:   cfg.GetWSPingInterval(),
		WriteTimeout:   cfg.GetWSWriteTimeout(),
		MaxMessageSize: cfg.GetWSMaxMessageSize(),
		SendBuffer:     cfg.GetWSSendBuffer(),
	})
	g.GET("/ws", handler.ServeWS)
	g.GET("/ws/health", handler.Health)

	slog.Warn("WebSocket connections are not authenticated; any client can join any room", "route", "/ws")
	return nil
}

// Shutdown stops delivery and ends open connections.
func (m *ChatModule) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down ChatModule...")
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}
