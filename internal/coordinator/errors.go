package coordinator

import (
	"errors"

	"github.com/traqcheck/intake-client/internal/domain"
)

var (
	// ErrReconcileFailed is wrapped when an action succeeded but the
	// follow-up snapshot read did not. The action's result is still returned.
	ErrReconcileFailed = errors.New("action succeeded but refreshing the candidate failed")

	// ErrNoDocumentsSelected is returned by SubmitDocuments when neither PAN
	// nor Aadhaar is selected.
	ErrNoDocumentsSelected = domain.NewValidationError("documents", "select a PAN and/or Aadhaar file")
)
