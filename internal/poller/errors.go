package poller

import (
	"errors"
	"fmt"

	"github.com/traqcheck/intake-client/internal/domain"
)

// ErrPollAborted matches every *PollAbortedError via errors.Is.
var ErrPollAborted = errors.New("polling aborted")

// PollAbortedError ends a loop whose read failed. It is distinct from a
// candidate whose extraction status is "error": that is a successful read
// of a terminal state.
type PollAbortedError struct {
	ID  domain.CandidateID
	Err error
}

func (e *PollAbortedError) Error() string {
	return fmt.Sprintf("polling %s aborted: %v", e.ID, e.Err)
}

func (e *PollAbortedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPollAborted.
func (e *PollAbortedError) Is(target error) bool {
	return target == ErrPollAborted
}
