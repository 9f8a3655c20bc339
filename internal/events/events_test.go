package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewEvent(t *testing.T) {
	payload := PollEnded{Outcome: "failed", Error: "HTTP 502"}

	event, err := NewViewEvent(KindPollEnded, "c-7", "parsing", 4, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, KindPollEnded, event.Kind)
	assert.Equal(t, "c-7", event.CandidateID)
	assert.Equal(t, "parsing", event.Status)
	assert.Equal(t, uint64(4), event.Version)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded PollEnded
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewViewEventWithoutPayload(t *testing.T) {
	event, err := NewViewEvent(KindCleared, "", "", 0, nil)

	require.NoError(t, err)
	assert.Empty(t, event.Payload)
}

func TestNewViewEventUnencodablePayload(t *testing.T) {
	_, err := NewViewEvent(KindPreviewChanged, "c-1", "", 0, make(chan int))

	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	mu sync.Mutex
	// The last event received by this handler
	LastEvent *ViewEvent
	// Error to return from HandleEvent
	HandlerError error
	// Number of times HandleEvent was called
	HandledCount int
}

// HandleEvent records the event and returns HandlerError.
func (m *MockEventHandler) HandleEvent(ctx context.Context, event *ViewEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastEvent = event
	m.HandledCount++
	return m.HandlerError
}
