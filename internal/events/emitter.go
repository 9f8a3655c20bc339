package events

import (
	"context"
	"log/slog"
	"sync"
)

type subscription struct {
	id      uint64
	handler EventHandler
	kinds   map[Kind]bool
}

func (s subscription) wants(kind Kind) bool {
	return len(s.kinds) == 0 || s.kinds[kind]
}

// InMemoryEventEmitter delivers view events synchronously, in subscription
// order, to the handlers subscribed to their kind.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no subscribers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "view_events"),
	}
}

// RegisterHandler subscribes handler to the given kinds, or to every kind
// when none are named. The returned func removes the subscription.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, kinds ...Kind) (unregister func()) {
	sub := subscription{handler: handler}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}

	e.mu.Lock()
	e.nextID++
	sub.id = e.nextID
	e.subs = append(e.subs, sub)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(sub.id) })
	}
}

func (e *InMemoryEventEmitter) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// EmitEvent hands event to every subscriber of its kind. A failing handler
// does not stop delivery; the first error is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *ViewEvent) error {
	e.mu.RLock()
	subs := e.subs
	e.mu.RUnlock()

	var firstErr error
	for _, s := range subs {
		if !s.wants(event.Kind) {
			continue
		}
		if err := s.handler.HandleEvent(ctx, event); err != nil {
			e.logger.WarnContext(ctx, "view event handler failed",
				"error", err,
				"kind", event.Kind,
				"candidate_id", event.CandidateID,
				"version", event.Version)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
