package chat

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	ws "github.com/nfrund/charroom/internal/websocket"
)

// Handler upgrades HTTP requests to relay connections.
type Handler struct {
	root       context.Context
	hub        *ws.Hub
	service    *Service
	dispatcher *Dispatcher
	opts       ws.Options
}

// NewHandler creates a handler. Connections end when root is canceled.
func NewHandler(root context.Context, hub *ws.Hub, service *Service, opts ws.Options) *Handler {
	return &Handler{
		root:       root,
		hub:        hub,
		service:    service,
		dispatcher: NewDispatcher(service),
		opts:       opts,
	}
}

// ServeWS accepts a socket and serves it until the peer disconnects.
func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		// Sockets carry no session, any origin may connect.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	stop := context.AfterFunc(h.root, cancel)
	defer stop()

	client := ws.NewClient(uuid.NewString(), conn, h.opts)
	h.hub.Register(client)
	defer h.service.Disconnect(context.WithoutCancel(ctx), client)

	slog.InfoContext(ctx, "Client connected", "client_id", client.ID(), "remote_addr", c.RealIP())
	if err := h.service.Greet(ctx, client.ID()); err != nil {
		slog.WarnContext(ctx, "Failed to greet client", "client_id", client.ID(), "error", err)
	}

	client.Run(ctx, h.dispatcher.Dispatch)
	return nil
}

// Health reports the number of live connections.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"connections": h.hub.ClientCount()})
}
