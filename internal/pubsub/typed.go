package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// TopicInfo describes a registered bus topic.
type TopicInfo struct {
	Name          string
	Description   string
	TypeName      string
	PayloadFields []string
}

var (
	catalogMu sync.RWMutex
	catalog   = map[string]TopicInfo{}
)

// Event is a topic bound to the payload type T.
type Event[T any] struct {
	name string
}

// NewEvent declares a typed topic and records it in the topic catalog.
// Declaring the same name twice panics; events are package-level values.
func NewEvent[T any](name, description string) Event[T] {
	var zero T
	t := reflect.TypeOf(zero)
	info := TopicInfo{Name: name, Description: description}
	if t != nil {
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		info.TypeName = t.String()
		info.PayloadFields = jsonFields(t)
	}

	catalogMu.Lock()
	defer catalogMu.Unlock()
	if _, exists := catalog[name]; exists {
		panic(fmt.Sprintf("pubsub: topic %q declared twice", name))
	}
	catalog[name] = info

	return Event[T]{name: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.name
}

// Decode unmarshals a message payload published for this event.
func (e Event[T]) Decode(msg Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("decode %s: %w", e.name, err)
	}
	return payload, nil
}

// Publish marshals payload and publishes it on the event's topic.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T, metadata map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.name, err)
	}
	return p.Publish(ctx, Message{
		Topic:    event.Name(),
		UserID:   userID,
		Payload:  data,
		Metadata: metadata,
	})
}

// Topics returns every declared topic sorted by name.
func Topics() []TopicInfo {
	catalogMu.RLock()
	defer catalogMu.RUnlock()

	out := make([]TopicInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func jsonFields(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}
	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		fields = append(fields, name)
	}
	return fields
}
