package domain

import "encoding/json"

// EventType discriminates units of a streamed response.
type EventType string

const (
	EventMetadata EventType = "metadata"
	EventContent  EventType = "content"
	EventDone     EventType = "done"
	EventError    EventType = "error"
)

// Event is one unit of a finite, non-restartable response stream. Exactly
// one done or error event terminates a stream; the producing channel is
// closed afterwards.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ContentEvent wraps a text fragment.
func ContentEvent(delta string) Event {
	data, _ := json.Marshal(delta)
	return Event{Type: EventContent, Data: data}
}

// MetadataEvent wraps an arbitrary JSON-serializable payload.
func MetadataEvent(payload any) Event {
	data, _ := json.Marshal(payload)
	return Event{Type: EventMetadata, Data: data}
}

// DoneEvent marks normal stream completion.
func DoneEvent() Event { return Event{Type: EventDone} }

// ErrorEvent wraps a terminal failure message.
func ErrorEvent(msg string) Event {
	data, _ := json.Marshal(msg)
	return Event{Type: EventError, Data: data}
}

// Text returns the string payload of a content or error event.
func (e Event) Text() string {
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return string(e.Data)
	}
	return s
}
