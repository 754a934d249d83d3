package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/charroom/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Table names.
const (
	TableMessages   = "chat_message"
	TableCharacters = "character"
	TableRooms      = "chat_room"
)

// MessageRecord is the stored shape of a chat message.
type MessageRecord struct {
	ID         *surrealmodels.RecordID       `json:"id,omitempty" surrealdb:"id,omitempty"`
	Content    string                        `json:"content" surrealdb:"content"`
	SenderType string                        `json:"sender_type" surrealdb:"sender_type"`
	SenderID   *string                       `json:"sender_id,omitempty" surrealdb:"sender_id,omitempty"`
	ChatRoomID string                        `json:"chat_room_id" surrealdb:"chat_room_id"`
	CreatedAt  *surrealmodels.CustomDateTime `json:"created_at,omitempty" surrealdb:"created_at,omitempty"`
}

func (r *MessageRecord) toDomain() domain.ChatMessage {
	return domain.ChatMessage{
		ID:         recordIDString(r.ID),
		Content:    r.Content,
		SenderType: domain.SenderType(r.SenderType),
		SenderID:   r.SenderID,
		ChatRoomID: r.ChatRoomID,
		CreatedAt:  timeOf(r.CreatedAt),
	}
}

// CharacterRecord is the stored shape of a character.
type CharacterRecord struct {
	ID           *surrealmodels.RecordID       `json:"id,omitempty" surrealdb:"id,omitempty"`
	Name         string                        `json:"name" surrealdb:"name"`
	NameKey      string                        `json:"name_key" surrealdb:"name_key"`
	SystemPrompt string                        `json:"system_prompt" surrealdb:"system_prompt"`
	Description  string                        `json:"description,omitempty" surrealdb:"description,omitempty"`
	Greeting     string                        `json:"greeting,omitempty" surrealdb:"greeting,omitempty"`
	Model        string                        `json:"model,omitempty" surrealdb:"model,omitempty"`
	Temperature  float64                       `json:"temperature" surrealdb:"temperature"`
	CreatedAt    *surrealmodels.CustomDateTime `json:"created_at,omitempty" surrealdb:"created_at,omitempty"`
}

func characterRecordFrom(c domain.Character) CharacterRecord {
	return CharacterRecord{
		Name:         strings.TrimSpace(c.Name),
		NameKey:      domain.CharacterNameKey(c.Name),
		SystemPrompt: c.SystemPrompt,
		Description:  c.Description,
		Greeting:     c.Greeting,
		Model:        c.Model,
		Temperature:  c.Temperature,
	}
}

func (r *CharacterRecord) toDomain() domain.Character {
	return domain.Character{
		ID:           recordIDString(r.ID),
		Name:         r.Name,
		SystemPrompt: r.SystemPrompt,
		Description:  r.Description,
		Greeting:     r.Greeting,
		Model:        r.Model,
		Temperature:  r.Temperature,
		CreatedAt:    timeOf(r.CreatedAt),
	}
}

// RoomRecord is the stored shape of a chat room.
type RoomRecord struct {
	ID           *surrealmodels.RecordID       `json:"id,omitempty" surrealdb:"id,omitempty"`
	Name         string                        `json:"name" surrealdb:"name"`
	Description  string                        `json:"description,omitempty" surrealdb:"description,omitempty"`
	CharacterIDs []string                      `json:"character_ids" surrealdb:"character_ids"`
	CreatedAt    *surrealmodels.CustomDateTime `json:"created_at,omitempty" surrealdb:"created_at,omitempty"`
}

func (r *RoomRecord) toDomain() domain.ChatRoom {
	ids := r.CharacterIDs
	if ids == nil {
		ids = []string{}
	}
	return domain.ChatRoom{
		ID:           recordIDString(r.ID),
		Name:         r.Name,
		Description:  r.Description,
		CharacterIDs: ids,
		CreatedAt:    timeOf(r.CreatedAt),
	}
}

// ParseRecordID accepts either "table:key" or a bare key and returns the
// record id in table. A prefix naming a different table is rejected.
func ParseRecordID(table, id string) (surrealmodels.RecordID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return surrealmodels.RecordID{}, NewDBError(ErrInvalidID, "id cannot be empty")
	}

	key := id
	if prefix, rest, ok := strings.Cut(id, ":"); ok {
		if prefix != table || rest == "" {
			return surrealmodels.RecordID{}, NewDBError(ErrInvalidID, fmt.Sprintf("id %q is not a %s record", id, table))
		}
		key = rest
	}
	return surrealmodels.NewRecordID(table, key), nil
}

func recordIDString(id *surrealmodels.RecordID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%s:%v", id.Table, id.ID)
}

func timeOf(dt *surrealmodels.CustomDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	return dt.Time.UTC()
}

func now() *surrealmodels.CustomDateTime {
	return &surrealmodels.CustomDateTime{Time: time.Now().UTC()}
}
