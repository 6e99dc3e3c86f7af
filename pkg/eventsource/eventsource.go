// Package eventsource delivers named fleet events from the control-plane server.
package eventsource

import (
	"context"
	"encoding/json"
)

// Event is one frame of the event stream. Name is empty for bare frames that carry
// a payload without an envelope.
type Event struct {
	Name    string
	Payload []byte
}

// Handler consumes events. Sources call it from a single goroutine, one event at a time.
type Handler func(Event)

// Source produces events until its context is cancelled or it runs out of events.
type Source interface {
	Run(ctx context.Context, handle Handler) error
}

type envelope struct {
	Type    *string         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ParseFrame unwraps a {"type": name, "payload": ...} envelope. Frames that are not an
// envelope are returned whole as an unnamed event.
func ParseFrame(data []byte) Event {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err == nil && len(fields) == 2 {
		var env envelope
		if err := json.Unmarshal(data, &env); err == nil && env.Type != nil && env.Payload != nil {
			return Event{Name: *env.Type, Payload: env.Payload}
		}
	}
	return Event{Payload: data}
}
