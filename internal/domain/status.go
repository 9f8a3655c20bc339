package domain

// ExtractionStatus is the backend's processing state for a candidate's resume.
// The set is open: the backend may report intermediate values this client has
// never seen, and those are treated like any other non-terminal status.
type ExtractionStatus string

// Known extraction status values.
const (
	StatusQueued  ExtractionStatus = "queued"
	StatusParsing ExtractionStatus = "parsing"
	StatusDone    ExtractionStatus = "done"
	StatusError   ExtractionStatus = "error"
	// StatusUnknown is reported when a candidate has no extraction record.
	StatusUnknown ExtractionStatus = "unknown"
)

// IsTerminal reports whether no further automatic reads should happen.
// Only done and error are terminal.
func (s ExtractionStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

func (s ExtractionStatus) String() string {
	return string(s)
}
