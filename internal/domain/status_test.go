package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   ExtractionStatus
		terminal bool
	}{
		{StatusDone, true},
		{StatusError, true},
		{StatusQueued, false},
		{StatusParsing, false},
		{StatusUnknown, false},
		{ExtractionStatus("ocr_pending"), false},
		{ExtractionStatus(""), false},
		{ExtractionStatus("DONE"), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.terminal, tc.status.IsTerminal())
		})
	}
}
