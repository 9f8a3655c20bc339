package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMalformedResponse is wrapped when a successful response body cannot
	// be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response body")

	// ErrFileTooLarge is returned before upload when a file exceeds the
	// configured limit.
	ErrFileTooLarge = errors.New("file exceeds upload limit")
)

// TransportError is the single failure type returned by Client operations.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// errorMessageFields are checked in order when the backend returns a
// structured error body.
var errorMessageFields = []string{"error", "detail", "message"}

// newStatusError builds the error for a non-2xx response.
func newStatusError(status int, body []byte) *TransportError {
	return &TransportError{
		StatusCode: status,
		Message:    ErrorMessage(status, body),
	}
}

// ErrorMessage derives a display message from an error response body.
// A structured body yields its error, detail or message field, in that
// order; anything else is used as plain text; an empty body falls back to
// "HTTP <status>".
func ErrorMessage(status int, body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, name := range errorMessageFields {
			raw, ok := fields[name]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// IsStatus reports whether err is a TransportError with the given status.
func IsStatus(err error, status int) bool {
	var terr *TransportError
	return errors.As(err, &terr) && terr.StatusCode == status
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
