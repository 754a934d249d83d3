package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/modules/chat/events"
	"github.com/nfrund/charroom/internal/websocket"
)

var errUnknownEvent = &domain.ValidationError{Field: "event", Reason: "is not a known event"}

// Dispatcher decodes inbound frames and routes them to the relay. It is a
// websocket.DispatchFunc, so a connection's frames are handled in order.
type Dispatcher struct {
	service *Service
}

// NewDispatcher creates a dispatcher for service.
func NewDispatcher(service *Service) *Dispatcher {
	return &Dispatcher{service: service}
}

// Dispatch handles one frame. Failures are reported to the sender as an
// error frame; panics are recovered so the connection survives.
func (d *Dispatcher) Dispatch(ctx context.Context, c *websocket.Client, raw []byte) {
	event := ""
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Recovered from panic in chat handler",
				"client_id", c.ID(), "event", event, "panic", r, "stack", string(debug.Stack()))
			d.service.SendError(ctx, c, fallbackMessage(event))
		}
	}()

	frame, err := websocket.DecodeFrame(raw)
	if err != nil {
		slog.DebugContext(ctx, "Rejected malformed frame", "client_id", c.ID(), "error", err)
		d.service.SendError(ctx, c, (&domain.ValidationError{Reason: "malformed frame"}).Error())
		return
	}
	event = frame.Event

	if err := d.route(ctx, c.ID(), frame); err != nil {
		msg := errorMessage(event, err)
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
			slog.InfoContext(ctx, "Chat request rejected", "client_id", c.ID(), "event", event, "error", err)
		} else {
			slog.ErrorContext(ctx, "Chat handler failed", "client_id", c.ID(), "event", event, "error", err)
		}
		d.service.SendError(ctx, c, msg)
	}
}

func (d *Dispatcher) route(ctx context.Context, clientID string, frame websocket.Frame) error {
	switch frame.Event {
	case events.JoinRoom:
		roomID, err := decodeRoomID(frame.Data)
		if err != nil {
			return err
		}
		return d.service.JoinRoom(ctx, clientID, roomID)

	case events.LeaveRoom:
		roomID, err := decodeRoomID(frame.Data)
		if err != nil {
			return err
		}
		return d.service.LeaveRoom(ctx, clientID, roomID)

	case events.ChatMessage:
		var in events.SendMessage
		if err := decodePayload(frame.Data, &in); err != nil {
			return err
		}
		_, err := d.service.SendMessage(ctx, clientID, in)
		return err

	case events.RequestAIResponse:
		var in events.AIRequest
		if err := decodePayload(frame.Data, &in); err != nil {
			return err
		}
		_, err := d.service.RequestAIResponse(ctx, clientID, in)
		return err

	default:
		return errUnknownEvent
	}
}

// decodeRoomID accepts the room id as a bare JSON string, or as an object
// with a chatRoomId field.
func decodeRoomID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id, nil
	}
	var obj struct {
		ChatRoomID string `json:"chatRoomId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", &domain.ValidationError{Field: "data", Reason: "must be a room id"}
	}
	return obj.ChatRoomID, nil
}

func decodePayload(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return &domain.ValidationError{Field: "data", Reason: "is required"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &domain.ValidationError{Field: "data", Reason: "is malformed"}
	}
	return nil
}

// errorMessage maps a handler failure to the text shown to the sender.
func errorMessage(event string, err error) string {
	var notFound *domain.NotFoundError
	switch {
	case errors.Is(err, errUnknownEvent):
		return events.MsgUnknownEvent
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	case errors.As(err, &notFound) && notFound.Kind == "character":
		return events.MsgCharacterNotFound
	case errors.As(err, &notFound) && notFound.Kind == "room":
		return events.MsgRoomNotFound
	case event == events.RequestAIResponse && domain.IsProviderTimeout(err):
		return events.MsgAITimeout
	}
	return fallbackMessage(event)
}

func fallbackMessage(event string) string {
	switch event {
	case events.RequestAIResponse:
		return events.MsgAIFailed
	case events.JoinRoom, events.LeaveRoom:
		return events.MsgJoinFailed
	default:
		return events.MsgSendFailed
	}
}
