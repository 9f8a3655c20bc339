package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/traqcheck/intake-client/internal/coordinator"
	"github.com/traqcheck/intake-client/internal/domain"
	"github.com/traqcheck/intake-client/internal/events"
	"github.com/traqcheck/intake-client/internal/poller"
	"github.com/traqcheck/intake-client/internal/viewstate"
)

// Gateway is the backend client a Session needs.
type Gateway interface {
	coordinator.Gateway
	Upload(ctx context.Context, file domain.File) (*domain.UploadResult, error)
}

var _ poller.Sink = (*viewstate.State)(nil)

// Session is one view instance.
type Session struct {
	gateway     Gateway
	view        *viewstate.State
	poller      *poller.Poller
	coordinator *coordinator.Coordinator
	emitter     events.EventEmitter
	logger      *slog.Logger

	// ctx outlives individual calls; polls started by the session run
	// under it so Close can end them.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	id     domain.CandidateID
	closed bool
}

// New creates a Session. emitter may be nil; pollOpts configure the poller.
func New(gw Gateway, emitter events.EventEmitter, logger *slog.Logger, pollOpts ...poller.Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session")

	view := viewstate.New(emitter, logger)
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		gateway:     gw,
		view:        view,
		poller:      poller.New(gw, view, logger, pollOpts...),
		coordinator: coordinator.New(gw, view, logger),
		emitter:     emitter,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// View returns the session's view state.
func (s *Session) View() *viewstate.State {
	return s.view
}

// Poller returns the session's poller.
func (s *Session) Poller() *poller.Poller {
	return s.poller
}

// Upload sends a resume, records the backend's first answer in the view and
// starts polling the new candidate. The returned handle ends when the
// candidate reaches a terminal status, a read fails, or the poll is
// replaced or cancelled.
func (s *Session) Upload(ctx context.Context, file domain.File) (*domain.UploadResult, *poller.Handle, error) {
	if err := s.checkOpen(); err != nil {
		return nil, nil, err
	}
	if err := file.Validate(); err != nil {
		return nil, nil, err
	}

	result, err := s.gateway.Upload(ctx, file)
	if err != nil {
		return nil, nil, err
	}

	s.switchTo(ctx, result.ID)
	s.view.SetSnapshot(&domain.Snapshot{ID: result.ID, Status: result.Status})
	s.logger.InfoContext(ctx, "tracking uploaded candidate",
		"candidate_id", result.ID,
		"status", result.Status)

	return result, s.startPoll(result.ID), nil
}

// Track starts polling an existing candidate, replacing any running poll.
func (s *Session) Track(ctx context.Context, id domain.CandidateID) (*poller.Handle, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrEmptyCandidateID
	}

	s.switchTo(ctx, id)
	s.logger.DebugContext(ctx, "tracking candidate", "candidate_id", id)
	return s.startPoll(id), nil
}

// switchTo ends the running loop before the view is touched, so a read
// already in flight for the previous candidate is discarded instead of
// landing after the reset. The view is cleared when id is a different
// candidate.
func (s *Session) switchTo(ctx context.Context, id domain.CandidateID) {
	if prev := s.poller.Current(); prev != nil {
		s.poller.Cancel(prev)
		s.logger.DebugContext(ctx, "stopped previous poll",
			"candidate_id", prev.ID(),
			"new_candidate_id", id)
	}
	if current := s.view.CandidateID(); current != "" && current != id {
		s.view.Reset()
	}
}

func (s *Session) startPoll(id domain.CandidateID) *poller.Handle {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()

	h := s.poller.Start(s.ctx, id)
	go s.announceEnd(h)
	return h
}

// announceEnd emits a KindPollEnded event when h finishes.
func (s *Session) announceEnd(h *poller.Handle) {
	<-h.Done()
	if s.emitter == nil {
		return
	}

	payload := events.PollEnded{Outcome: h.Outcome().String()}
	if err := h.Err(); err != nil {
		payload.Error = err.Error()
	}
	event, err := events.NewViewEvent(events.KindPollEnded, string(h.ID()),
		string(s.view.Status()), s.view.Version(), payload)
	if err != nil {
		s.logger.Error("failed to build poll event", "error", err)
		return
	}
	if err := s.emitter.EmitEvent(context.Background(), event); err != nil {
		s.logger.Warn("poll event handler failed", "error", err)
	}
}

// RequestDocuments requests documents for the tracked candidate.
func (s *Session) RequestDocuments(ctx context.Context, opts domain.RequestOptions) (*domain.RequestResult, error) {
	id, err := s.tracked()
	if err != nil {
		return nil, err
	}
	return s.coordinator.RequestDocuments(ctx, id, opts)
}

// SubmitDocuments submits the selection for the tracked candidate.
func (s *Session) SubmitDocuments(ctx context.Context, sel *coordinator.Selection) (*domain.SubmitResult, error) {
	id, err := s.tracked()
	if err != nil {
		return nil, err
	}
	return s.coordinator.SubmitDocuments(ctx, id, sel)
}

// Reparse re-queues extraction for the tracked candidate. Polling is left
// as it is; call Track to follow the new extraction.
func (s *Session) Reparse(ctx context.Context) (*domain.ReparseResult, error) {
	id, err := s.tracked()
	if err != nil {
		return nil, err
	}
	return s.coordinator.Reparse(ctx, id)
}

// Refresh re-reads the tracked candidate once.
func (s *Session) Refresh(ctx context.Context) error {
	id, err := s.tracked()
	if err != nil {
		return err
	}
	return s.coordinator.Refresh(ctx, id)
}

// Close stops polling and clears the view. It is safe to call more than
// once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.id = ""
	s.mu.Unlock()

	s.poller.Stop()
	s.cancel()
	s.view.Reset()
	s.logger.Debug("session closed")
	return nil
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Session) tracked() (domain.CandidateID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if s.id == "" {
		return "", ErrNotTracking
	}
	return s.id, nil
}

// CandidateID returns the tracked candidate, or "".
func (s *Session) CandidateID() domain.CandidateID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}
