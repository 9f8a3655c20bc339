package session

import "errors"

var (
	// ErrNotTracking is returned by actions when no candidate is tracked.
	ErrNotTracking = errors.New("no candidate is being tracked")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session closed")
)
