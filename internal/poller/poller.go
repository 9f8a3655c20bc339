package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/traqcheck/intake-client/internal/domain"
)

// DefaultInterval separates the end of one read from the start of the next.
const DefaultInterval = 1500 * time.Millisecond

// State is the lifecycle position of a poller or of one loop.
type State int

// Poller states.
const (
	StateIdle State = iota
	StatePolling
	// StateTerminal means the candidate reached done or error.
	StateTerminal
	// StateFailed means a read failed and the loop stopped.
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateTerminal:
		return "terminal"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Read outcomes reported to Metrics.
const (
	ReadOK        = "ok"
	ReadTerminal  = "terminal"
	ReadError     = "error"
	ReadDiscarded = "discarded"
)

// Fetcher performs one snapshot read.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, id domain.CandidateID) (*domain.Snapshot, error)
}

// Sink receives every accepted snapshot. It is called with the poller's lock
// held and must not call back into the poller.
type Sink interface {
	SetSnapshot(snapshot *domain.Snapshot)
}

// Metrics observes reads and loop endings.
type Metrics interface {
	ObserveRead(outcome string, d time.Duration)
	LoopFinished(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRead(string, time.Duration) {}
func (noopMetrics) LoopFinished(string)               {}

// ErrorHandler is told about every loop that ends in StateFailed. It runs
// without the poller lock held.
type ErrorHandler func(err *PollAbortedError)

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces the SystemClock.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

// WithMetrics records read and loop metrics.
func WithMetrics(m Metrics) Option {
	return func(p *Poller) {
		p.metrics = m
	}
}

// WithErrorHandler sets the handler for failed loops.
func WithErrorHandler(h ErrorHandler) Option {
	return func(p *Poller) {
		p.errorHandler = h
	}
}

// Poller drives one polling loop at a time.
type Poller struct {
	fetcher      Fetcher
	sink         Sink
	clock        Clock
	metrics      Metrics
	errorHandler ErrorHandler
	interval     time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	state   State
	current *Handle
}

// New creates an idle Poller that reads through fetcher and writes to sink.
func New(fetcher Fetcher, sink Sink, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		fetcher:  fetcher,
		sink:     sink,
		clock:    SystemClock{},
		metrics:  noopMetrics{},
		interval: DefaultInterval,
		logger:   logger.With("component", "poller"),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle identifies one polling loop.
type Handle struct {
	id     domain.CandidateID
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	mu     *sync.Mutex

	// guarded by mu
	timer    Timer
	finished bool
	outcome  State
	err      error
	reads    int
}

// ID returns the candidate this loop reads.
func (h *Handle) ID() domain.CandidateID {
	return h.id
}

// Done is closed when the loop ends for any reason.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the *PollAbortedError of a failed loop, or nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Outcome returns StatePolling while the loop runs, then how it ended.
func (h *Handle) Outcome() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.finished {
		return StatePolling
	}
	return h.outcome
}

// Reads returns how many reads of this loop were accepted.
func (h *Handle) Reads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reads
}

// Wait blocks until the loop ends or ctx is done. It returns the loop error,
// or ctx.Err() if ctx ended first.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins polling id, first cancelling any running loop. The first read
// is issued immediately. ctx bounds the whole loop.
func (p *Poller) Start(ctx context.Context, id domain.CandidateID) *Handle {
	p.mu.Lock()
	if p.current != nil {
		p.logger.Debug("replacing running poll loop",
			"candidate_id", p.current.id,
			"new_candidate_id", id)
		p.finishLocked(p.current, StateCancelled, nil)
	}

	hctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:     id,
		ctx:    hctx,
		cancel: cancel,
		done:   make(chan struct{}),
		mu:     &p.mu,
	}
	p.current = h
	p.state = StatePolling
	p.mu.Unlock()

	p.logger.Debug("poll loop started", "candidate_id", id, "interval", p.interval)
	go p.read(h)
	return h
}

// Cancel ends h. Once Cancel returns, no read belonging to h can reach the
// sink. Cancelling a finished or replaced loop is a no-op.
func (p *Poller) Cancel(h *Handle) {
	if h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked(h, StateCancelled, nil)
}

// Stop cancels whatever loop is running.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.finishLocked(p.current, StateCancelled, nil)
	}
}

// State returns the poller's state: the running loop's, or how the last
// loop ended.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the running loop, or nil.
func (p *Poller) Current() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// finishLocked ends h. Callers hold p.mu.
func (p *Poller) finishLocked(h *Handle, outcome State, err error) {
	if h.finished {
		return
	}
	h.finished = true
	h.outcome = outcome
	h.err = err
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.cancel()

	if p.current == h {
		p.current = nil
		p.state = outcome
	}
	p.metrics.LoopFinished(outcome.String())
	p.logger.Debug("poll loop finished",
		"candidate_id", h.id,
		"outcome", outcome.String(),
		"reads", h.reads)
	close(h.done)
}

// active reports whether h may still mutate state. Callers hold p.mu.
func (p *Poller) active(h *Handle) bool {
	return p.current == h && !h.finished
}

func (p *Poller) read(h *Handle) {
	start := time.Now()
	snapshot, err := p.fetcher.FetchSnapshot(h.ctx, h.id)
	if err == nil && snapshot == nil {
		err = errors.New("empty snapshot")
	}
	elapsed := time.Since(start)

	p.mu.Lock()
	if !p.active(h) {
		p.mu.Unlock()
		p.metrics.ObserveRead(ReadDiscarded, elapsed)
		p.logger.Debug("discarding result of cancelled poll loop", "candidate_id", h.id)
		return
	}
	h.reads++

	if err != nil {
		aborted := &PollAbortedError{ID: h.id, Err: err}
		p.finishLocked(h, StateFailed, aborted)
		handler := p.errorHandler
		p.mu.Unlock()

		p.metrics.ObserveRead(ReadError, elapsed)
		p.logger.Warn("poll read failed, polling stopped",
			"candidate_id", h.id,
			"error", err)
		if handler != nil {
			handler(aborted)
		}
		return
	}

	p.sink.SetSnapshot(snapshot)

	if snapshot.Status.IsTerminal() {
		p.finishLocked(h, StateTerminal, nil)
		p.mu.Unlock()

		p.metrics.ObserveRead(ReadTerminal, elapsed)
		p.logger.Info("extraction reached terminal status",
			"candidate_id", h.id,
			"status", snapshot.Status)
		return
	}

	h.timer = p.clock.AfterFunc(p.interval, func() { p.tick(h) })
	p.mu.Unlock()

	p.metrics.ObserveRead(ReadOK, elapsed)
}

// tick runs a scheduled read if h is still current.
func (p *Poller) tick(h *Handle) {
	p.mu.Lock()
	if !p.active(h) {
		p.mu.Unlock()
		return
	}
	h.timer = nil
	p.mu.Unlock()

	p.read(h)
}
