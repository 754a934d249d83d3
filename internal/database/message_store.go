package database

import (
	"context"
	"log/slog"

	"github.com/nfrund/charroom/internal/config"
	"github.com/nfrund/charroom/internal/domain"
)

// MessageStore persists chat messages in SurrealDB.
type MessageStore struct {
	client Client[MessageRecord]
}

var _ domain.MessageRepository = (*MessageStore)(nil)

// NewMessageStore creates a message store over conn.
func NewMessageStore(conn DBConnection, cfg config.Provider, opts ...ClientOption[MessageRecord]) (*MessageStore, error) {
	client, err := NewClient(conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &MessageStore{client: client}, nil
}

const createMessageQuery = `CREATE type::table($table) SET
	content = $content,
	sender_type = $sender_type,
	sender_id = $sender_id,
	chat_room_id = $chat_room_id,
	created_at = time::now()`

// CreateMessage stores msg with a server-assigned id and timestamp.
func (s *MessageStore) CreateMessage(ctx context.Context, msg domain.NewChatMessage) (*domain.ChatMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	params := map[string]any{
		"table":        TableMessages,
		"content":      msg.Content,
		"sender_type":  string(msg.SenderType),
		"sender_id":    msg.SenderID,
		"chat_room_id": msg.ChatRoomID,
	}

	rec, err := s.client.QueryOne(ctx, createMessageQuery, params)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create chat message", "event", "db_message_create_failure", "room_id", msg.ChatRoomID, "error", err)
		return nil, &domain.PersistenceError{Op: "create message", Err: err}
	}
	if rec == nil {
		return nil, &domain.PersistenceError{Op: "create message", Err: NewDBError(ErrQueryFailed, "create returned no record")}
	}

	out := rec.toDomain()
	return &out, nil
}

const recentMessagesQuery = `SELECT * FROM type::table($table)
	WHERE chat_room_id = $chat_room_id
	ORDER BY created_at DESC
	LIMIT $limit`

// FindRecentMessages returns the newest limit messages in roomID, oldest first.
func (s *MessageStore) FindRecentMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}

	recs, err := s.client.Query(ctx, recentMessagesQuery, map[string]any{
		"table":        TableMessages,
		"chat_room_id": roomID,
		"limit":        limit,
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find recent messages", Err: err}
	}

	out := make([]domain.ChatMessage, len(recs))
	for i := range recs {
		// rows arrive newest first
		out[len(recs)-1-i] = recs[i].toDomain()
	}
	return out, nil
}
