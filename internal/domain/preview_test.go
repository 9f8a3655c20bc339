package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWellFormedPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"all three strings", `{"subject":"S","email_body":"B","sms_body":"T"}`, true},
		{"empty strings count as text", `{"subject":"","email_body":"","sms_body":""}`, true},
		{"with delivery fields", `{"subject":"S","email_body":"B","sms_body":"T","sent":true,"sent_at":"2025-01-02T03:04:05+00:00"}`, true},
		{"missing sms body", `{"subject":"S","email_body":"B"}`, false},
		{"subject is a number", `{"subject":1,"email_body":"B","sms_body":"T"}`, false},
		{"subject is null", `{"subject":null,"email_body":"B","sms_body":"T"}`, false},
		{"json null", `null`, false},
		{"array", `["S","B","T"]`, false},
		{"plain string", `"hello"`, false},
		{"not json", `subject=S`, false},
		{"empty", ``, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsWellFormedPreview(json.RawMessage(tc.raw)))
		})
	}
}

func TestParsePreview(t *testing.T) {
	t.Parallel()

	t.Run("decodes delivery outcome", func(t *testing.T) {
		p, ok := ParsePreview(json.RawMessage(`{"subject":"S","email_body":"B","sms_body":"T","sent":true,"sent_at":"2025-01-02T03:04:05.123456+00:00"}`))
		require.True(t, ok)
		assert.Equal(t, "S", p.Subject)
		assert.True(t, p.Delivered())

		at, ok := p.SentTime()
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.January, 2, 3, 4, 5, 123456000, time.UTC), at.UTC())
	})

	t.Run("keeps text when delivery fields are odd", func(t *testing.T) {
		p, ok := ParsePreview(json.RawMessage(`{"subject":"S","email_body":"B","sms_body":"T","sent":"yes"}`))
		require.True(t, ok)
		assert.Equal(t, &Preview{Subject: "S", EmailBody: "B", SMSBody: "T"}, p)
		assert.False(t, p.Delivered())
	})

	t.Run("rejects malformed preview", func(t *testing.T) {
		p, ok := ParsePreview(json.RawMessage(`{"subject":"S"}`))
		assert.False(t, ok)
		assert.Nil(t, p)
	})

	t.Run("naive sent_at is read as UTC", func(t *testing.T) {
		p := &Preview{SentAt: "2025-01-02T03:04:05"}
		at, ok := p.SentTime()
		require.True(t, ok)
		assert.Equal(t, time.UTC, at.Location())
	})
}
