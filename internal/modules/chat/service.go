package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/llm"
	"github.com/nfrund/charroom/internal/modules/chat/events"
	"github.com/nfrund/charroom/internal/modules/chat/topics"
	"github.com/nfrund/charroom/internal/pubsub"
	"github.com/nfrund/charroom/internal/websocket"
)

// Options tunes the relay.
type Options struct {
	HistoryLimit             int
	AITimeout                time.Duration
	RoomsRequireRegistration bool
}

// Service implements the relay operations. Every operation that changes
// what room members see goes through the bus so delivery order matches
// publish order.
type Service struct {
	messages   domain.MessageRepository
	characters domain.CharacterRepository
	rooms      domain.RoomRepository
	provider   llm.Provider
	hub        *websocket.Hub
	publisher  pubsub.Publisher
	opts       Options
}

// ServiceDeps lists the collaborators of a Service.
type ServiceDeps struct {
	Messages   domain.MessageRepository
	Characters domain.CharacterRepository
	Rooms      domain.RoomRepository
	Provider   llm.Provider
	Hub        *websocket.Hub
	Publisher  pubsub.Publisher
}

// NewService creates the relay. The provider is bounded by opts.AITimeout.
func NewService(deps ServiceDeps, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = 60 * time.Second
	}
	return &Service{
		messages:   deps.Messages,
		characters: deps.Characters,
		rooms:      deps.Rooms,
		provider:   llm.WithTimeout(deps.Provider, opts.AITimeout),
		hub:        deps.Hub,
		publisher:  deps.Publisher,
		opts:       opts,
	}
}

// Greet sends the welcome frame to a new connection.
func (s *Service) Greet(ctx context.Context, clientID string) error {
	return s.direct(ctx, clientID, events.Message, events.Greeting{
		Text:      events.MsgWelcome,
		SenderID:  string(domain.SenderSystem),
		Timestamp: time.Now().UTC(),
	})
}

// JoinRoom adds the connection to the room's broadcast group and
// acknowledges to the sender only.
func (s *Service) JoinRoom(ctx context.Context, clientID, roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return &domain.ValidationError{Field: "chatRoomId", Reason: "is required"}
	}
	if err := s.requireRoom(ctx, roomID); err != nil {
		return err
	}

	if err := s.hub.Join(clientID, roomID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Client joined room", "client_id", clientID, "room_id", roomID)

	return s.direct(ctx, clientID, events.JoinedRoom, events.RoomAck{
		ChatRoomID: roomID,
		Message:    "Joined room " + roomID,
	})
}

// LeaveRoom removes the connection from the room's broadcast group.
func (s *Service) LeaveRoom(ctx context.Context, clientID, roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return &domain.ValidationError{Field: "chatRoomId", Reason: "is required"}
	}
	if s.hub.Leave(clientID, roomID) {
		slog.InfoContext(ctx, "Client left room", "client_id", clientID, "room_id", roomID)
	}
	return s.direct(ctx, clientID, events.LeftRoom, events.RoomAck{
		ChatRoomID: roomID,
		Message:    "Left room " + roomID,
	})
}

// SendMessage persists a client message and broadcasts the stored record
// to the room, the sender included.
func (s *Service) SendMessage(ctx context.Context, clientID string, in events.SendMessage) (*domain.ChatMessage, error) {
	msg := domain.NewChatMessage{
		Content:    in.Content,
		SenderType: in.SenderType,
		SenderID:   in.SenderID,
		ChatRoomID: in.ChatRoomID,
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireRoom(ctx, msg.ChatRoomID); err != nil {
		return nil, err
	}

	saved, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	s.broadcast(ctx, clientID, saved)
	return saved, nil
}

// RequestAIResponse asks the character for a reply using recent room
// history as context, persists it as a character message and broadcasts it.
func (s *Service) RequestAIResponse(ctx context.Context, clientID string, req events.AIRequest) (*domain.ChatMessage, error) {
	if err := domain.ValidateStruct(&req); err != nil {
		return nil, err
	}
	roomID := req.ChatRoomID
	if err := s.requireRoom(ctx, roomID); err != nil {
		return nil, err
	}

	character, err := s.characters.FindCharacterByID(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, &domain.NotFoundError{Kind: "character", ID: req.CharacterID}
	}

	history, err := s.messages.FindRecentMessages(ctx, roomID, s.opts.HistoryLimit)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		Model:         character.Model,
		CharacterName: character.Name,
		SystemPrompt:  character.SystemPrompt,
		History:       toTurns(history, req.CharacterID, req.Message),
		Message:       req.Message,
		Temperature:   character.Temperature,
	})
	if err != nil {
		return nil, err
	}

	senderID := req.CharacterID
	saved, err := s.messages.CreateMessage(ctx, domain.NewChatMessage{
		Content:    resp.Content,
		SenderType: domain.SenderCharacter,
		SenderID:   &senderID,
		ChatRoomID: roomID,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Character replied", "client_id", clientID, "room_id", roomID,
		"character_id", req.CharacterID, "model", resp.Model)
	s.broadcast(ctx, clientID, saved)
	return saved, nil
}

// Disconnect tears down the connection's memberships.
func (s *Service) Disconnect(ctx context.Context, c *websocket.Client) {
	rooms := s.hub.Unregister(c)
	slog.InfoContext(ctx, "Client disconnected", "client_id", c.ID(), "rooms", len(rooms))
}

// SendError delivers a user-facing error frame to one connection. It falls
// back to the client's own queue when the bus is unavailable.
func (s *Service) SendError(ctx context.Context, c *websocket.Client, message string) {
	payload := events.ErrorPayload{Message: message}
	if err := s.direct(ctx, c.ID(), events.Error, payload); err != nil {
		slog.WarnContext(ctx, "Failed to publish error frame, writing directly", "client_id", c.ID(), "error", err)
		_ = c.Emit(events.Error, payload)
	}
}

// requireRoom checks that the room is registered when registration is
// required. Permissive mode accepts any id.
func (s *Service) requireRoom(ctx context.Context, roomID string) error {
	if !s.opts.RoomsRequireRegistration {
		return nil
	}
	room, err := s.rooms.FindRoomByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return &domain.NotFoundError{Kind: "room", ID: roomID}
	}
	return nil
}

// broadcast publishes a persisted message. The record is already stored,
// so a publish failure is logged rather than reported to the sender.
func (s *Service) broadcast(ctx context.Context, clientID string, msg *domain.ChatMessage) {
	err := pubsub.Publish(ctx, s.publisher, topics.TopicRoomMessage, clientID,
		topics.RoomMessage{RoomID: msg.ChatRoomID, Message: *msg},
		map[string]string{"room_id": msg.ChatRoomID})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish chat message", "message_id", msg.ID, "room_id", msg.ChatRoomID, "error", err)
	}
}

func (s *Service) direct(ctx context.Context, clientID, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	return pubsub.Publish(ctx, s.publisher, topics.TopicDirect, clientID,
		topics.Direct{ClientID: clientID, Event: event, Data: raw}, nil)
}

// toTurns maps stored history to prompt turns. Messages from the answering
// character become assistant turns. A trailing copy of the current user
// message is dropped because the request carries it separately.
func toTurns(history []domain.ChatMessage, characterID, current string) []llm.Turn {
	if n := len(history); n > 0 {
		last := history[n-1]
		if last.SenderType == domain.SenderUser && strings.TrimSpace(last.Content) == strings.TrimSpace(current) {
			history = history[:n-1]
		}
	}

	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		turn := llm.Turn{Role: llm.RoleUser, Content: m.Content}
		switch m.SenderType {
		case domain.SenderCharacter:
			if m.SenderID != nil && *m.SenderID == characterID {
				turn.Role = llm.RoleAssistant
			} else if m.SenderID != nil {
				turn.Name = *m.SenderID
			}
		case domain.SenderSystem:
			turn.Role = llm.RoleSystem
		default:
			if m.SenderID != nil {
				turn.Name = *m.SenderID
			}
		}
		turns = append(turns, turn)
	}
	return turns
}
