package viewstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/traqcheck/intake-client/internal/domain"
	"github.com/traqcheck/intake-client/internal/events"
)

// State is safe for concurrent use. It implements poller.Sink.
type State struct {
	mu       sync.RWMutex
	id       domain.CandidateID
	snapshot *domain.Snapshot
	preview  *domain.Preview
	version  uint64

	emitter events.EventEmitter
	logger  *slog.Logger
}

// New creates an empty State. emitter may be nil.
func New(emitter events.EventEmitter, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		emitter: emitter,
		logger:  logger.With("component", "viewstate"),
	}
}

// SetSnapshot replaces the held snapshot unconditionally and re-derives the
// displayed preview from the most recent request record. A preview that is
// not well formed is cleared rather than shown.
func (s *State) SetSnapshot(snapshot *domain.Snapshot) {
	if snapshot == nil {
		return
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.id = snapshot.ID
	s.preview = derivePreview(snapshot)
	s.version++
	event := s.newEventLocked(events.KindSnapshotReplaced, nil)
	s.mu.Unlock()

	s.emit(event)
}

func derivePreview(snapshot *domain.Snapshot) *domain.Preview {
	latest := snapshot.LatestRequest()
	if latest == nil {
		return nil
	}
	p, ok := domain.ParsePreview(latest.Preview)
	if !ok {
		return nil
	}
	return p
}

// SetPreview shows a freshly created preview until the next SetSnapshot.
func (s *State) SetPreview(preview domain.Preview) {
	s.mu.Lock()
	p := preview
	s.preview = &p
	s.version++
	event := s.newEventLocked(events.KindPreviewChanged, p)
	s.mu.Unlock()

	s.emit(event)
}

// Reset forgets the candidate, snapshot and preview.
func (s *State) Reset() {
	s.mu.Lock()
	if s.id == "" && s.snapshot == nil && s.preview == nil {
		s.mu.Unlock()
		return
	}
	s.id = ""
	s.snapshot = nil
	s.preview = nil
	s.version++
	event := s.newEventLocked(events.KindCleared, nil)
	s.mu.Unlock()

	s.emit(event)
}

// Snapshot returns the latest snapshot, or nil. Callers must not modify it.
func (s *State) Snapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Preview returns a copy of the displayed preview, or nil.
func (s *State) Preview() *domain.Preview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.preview == nil {
		return nil
	}
	p := *s.preview
	return &p
}

// Status returns the latest extraction status, or "" with no snapshot.
func (s *State) Status() domain.ExtractionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return ""
	}
	return s.snapshot.Status
}

// Documents returns a copy of the latest document list.
func (s *State) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	return append([]domain.Document(nil), s.snapshot.Documents...)
}

// CandidateID returns the candidate the view shows, or "".
func (s *State) CandidateID() domain.CandidateID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Version increases with every change.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *State) newEventLocked(kind events.Kind, payload interface{}) *events.ViewEvent {
	if s.emitter == nil {
		return nil
	}
	status := ""
	if s.snapshot != nil {
		status = string(s.snapshot.Status)
	}
	event, err := events.NewViewEvent(kind, string(s.id), status, s.version, payload)
	if err != nil {
		s.logger.Error("failed to build view event", "kind", kind, "error", err)
		return nil
	}
	return event
}

func (s *State) emit(event *events.ViewEvent) {
	if event == nil {
		return
	}
	if err := s.emitter.EmitEvent(context.Background(), event); err != nil {
		s.logger.Warn("view event handler failed",
			"kind", event.Kind,
			"candidate_id", event.CandidateID,
			"error", err)
	}
}
