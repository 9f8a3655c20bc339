package domain

import (
	"encoding/json"
	"time"
)

// Preview is generated content for an outbound document request, plus the
// delivery outcome when the backend was asked to send it immediately.
type Preview struct {
	Subject   string `json:"subject"`
	EmailBody string `json:"email_body"`
	SMSBody   string `json:"sms_body"`
	Sent      *bool  `json:"sent,omitempty"`
	SentAt    string `json:"sent_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Delivered reports whether the backend marked the preview as sent.
func (p *Preview) Delivered() bool {
	return p != nil && p.Sent != nil && *p.Sent
}

// SentTime parses SentAt. The backend emits ISO 8601 with an offset; values
// without one are read as UTC.
func (p *Preview) SentTime() (time.Time, bool) {
	if p == nil || p.SentAt == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, p.SentAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// previewTextFields must all be present as JSON strings for a preview to be
// displayed.
var previewTextFields = []string{"subject", "email_body", "sms_body"}

// IsWellFormedPreview reports whether raw is a JSON object whose subject,
// email_body and sms_body members are all present and all strings.
func IsWellFormedPreview(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return false
	}
	for _, name := range previewTextFields {
		v, ok := fields[name]
		if !ok {
			return false
		}
		var s *string
		if err := json.Unmarshal(v, &s); err != nil || s == nil {
			return false
		}
	}
	return true
}

// ParsePreview decodes raw when it is well formed. Optional delivery fields
// that fail to decode are dropped rather than rejecting the preview.
func ParsePreview(raw json.RawMessage) (*Preview, bool) {
	if !IsWellFormedPreview(raw) {
		return nil, false
	}
	var p Preview
	if err := json.Unmarshal(raw, &p); err == nil {
		return &p, true
	}

	var text struct {
		Subject   string `json:"subject"`
		EmailBody string `json:"email_body"`
		SMSBody   string `json:"sms_body"`
	}
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, false
	}
	return &Preview{Subject: text.Subject, EmailBody: text.EmailBody, SMSBody: text.SMSBody}, true
}
