package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/middleware"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// RoomHandler serves the room and message history API.
type RoomHandler struct {
	rooms    domain.RoomRepository
	messages domain.MessageRepository
}

// NewRoomHandler creates a RoomHandler.
func NewRoomHandler(rooms domain.RoomRepository, messages domain.MessageRepository) *RoomHandler {
	return &RoomHandler{rooms: rooms, messages: messages}
}

// List handles GET /api/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	list, err := h.rooms.ListRooms(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if list == nil {
		list = []domain.ChatRoom{}
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /api/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	room, err := h.find(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Create handles POST /api/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var req CreateRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	created, err := h.rooms.CreateRoom(ctx, domain.ChatRoom{
		Name:         req.Name,
		Description:  req.Description,
		CharacterIDs: req.CharacterIDs,
	})
	if err != nil {
		return respondError(c, err)
	}

	middleware.FromContext(ctx).Info("Room created", "room_id", created.ID, "name", created.Name)
	return c.JSON(http.StatusCreated, created)
}

// Messages handles GET /api/rooms/:id/messages?limit=N and returns the
// newest N messages oldest first.
func (h *RoomHandler) Messages(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return respondError(c, &domain.ValidationError{Field: "limit", Reason: "must be a positive integer"})
		}
		limit = min(n, maxHistoryLimit)
	}

	room, err := h.find(c)
	if err != nil {
		return respondError(c, err)
	}

	// Messages are keyed by the room id the clients used; look up both forms.
	msgs, err := h.messages.FindRecentMessages(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	if len(msgs) == 0 && room.ID != c.Param("id") {
		if msgs, err = h.messages.FindRecentMessages(c.Request().Context(), room.ID, limit); err != nil {
			return respondError(c, err)
		}
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *RoomHandler) find(c echo.Context) (*domain.ChatRoom, error) {
	id := c.Param("id")
	room, err := h.rooms.FindRoomByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, &domain.NotFoundError{Kind: "room", ID: id}
	}
	return room, nil
}
