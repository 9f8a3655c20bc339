package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind names what changed.
type Kind string

// View event kinds.
const (
	// KindSnapshotReplaced follows every accepted snapshot read.
	KindSnapshotReplaced Kind = "snapshot_replaced"
	// KindPreviewChanged is emitted when a fresh request preview is shown.
	KindPreviewChanged Kind = "preview_changed"
	// KindCleared is emitted when a view forgets its candidate.
	KindCleared Kind = "cleared"
	// KindPollEnded is emitted once per poll loop, whatever ended it.
	KindPollEnded Kind = "poll_ended"
)

// ViewEvent describes one change to a view.
type ViewEvent struct {
	ID          uuid.UUID       `json:"id"`
	Kind        Kind            `json:"kind"`
	CandidateID string          `json:"candidate_id,omitempty"`
	Status      string          `json:"status,omitempty"`
	Version     uint64          `json:"version"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *ViewEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewViewEvent creates a ViewEvent. A nil payload leaves Payload empty.
func NewViewEvent(kind Kind, candidateID, status string, version uint64, payload interface{}) (*ViewEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &ViewEvent{
		ID:          uuid.New(),
		Kind:        kind,
		CandidateID: candidateID,
		Status:      status,
		Version:     version,
		Payload:     raw,
		CreatedAt:   time.Now(),
	}, nil
}

// PollEnded is the payload of a KindPollEnded event.
type PollEnded struct {
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// EventHandler reacts to view events. Handlers run on the emitting
// goroutine and must not block for long.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *ViewEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *ViewEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ViewEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes view events.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *ViewEvent) error
}
