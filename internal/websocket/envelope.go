package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned for inbound frames that are not a JSON
// envelope with an event name.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is the wire envelope exchanged in both directions:
// {"event": "<name>", "data": <payload>}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode builds an outbound frame.
func Encode(event string, data any) ([]byte, error) {
	b, err := json.Marshal(outbound{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return b, nil
}

// DecodeFrame parses an inbound frame.
func DecodeFrame(raw []byte) (Frame, error) {
	var f Frame
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event name", ErrMalformedFrame)
	}
	return f, nil
}
