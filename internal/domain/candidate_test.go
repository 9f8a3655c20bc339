package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotJSON = `{
  "id": "c1",
  "extracted": {"name": "Jane Doe", "email": "jane@example.com", "skills": ["go", "sql"]},
  "confidence": {"name": 0.92, "email": 0.8},
  "documents": [
    {"id": "d1", "type": "PAN", "filename": "pan.pdf", "uploaded_at": "2025-03-01T10:00:00Z", "verified": true}
  ],
  "requests": [
    {"id": "r2", "channel": "email", "created_at": "2025-03-02T10:00:00Z", "preview": {"subject": "S2", "email_body": "B2", "sms_body": "T2"}},
    {"id": "r1", "channel": "sms", "created_at": "2025-03-01T10:00:00Z", "preview": null}
  ],
  "extraction_status": "done"
}`

func TestSnapshot_Decode(t *testing.T) {
	t.Parallel()

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(snapshotJSON), &s))

	assert.Equal(t, CandidateID("c1"), s.ID)
	assert.Equal(t, StatusDone, s.Status)
	assert.Equal(t, "Jane Doe", s.Extracted.Name)
	assert.Equal(t, []string{"go", "sql"}, s.Extracted.Skills)

	score, ok := s.Confidence.Score(FieldName)
	assert.True(t, ok)
	assert.InDelta(t, 0.92, score, 1e-9)
	_, ok = s.Confidence.Score(FieldPhone)
	assert.False(t, ok, "absent scores stay absent")

	require.Len(t, s.Documents, 1)
	assert.Equal(t, DocumentPAN, s.Documents[0].Type)
	assert.True(t, s.Documents[0].Verified)
	require.Len(t, s.Requests, 2)
	assert.Equal(t, ChannelEmail, s.Requests[0].Channel)
}

func TestConfidence_NullScores(t *testing.T) {
	t.Parallel()

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","confidence":{"name":null,"email":0,"phone":0.4}}`), &s))

	_, ok := s.Confidence.Score(FieldName)
	assert.False(t, ok, "a null score is unreported")

	score, ok := s.Confidence.Score(FieldEmail)
	assert.True(t, ok, "a zero score is reported")
	assert.Zero(t, score)

	score, ok = s.Confidence.Score(FieldPhone)
	assert.True(t, ok)
	assert.InDelta(t, 0.4, score, 1e-9)
	assert.Len(t, s.Confidence, 2)

	var empty Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c2","confidence":null}`), &empty))
	assert.Nil(t, empty.Confidence)
	_, ok = empty.Confidence.Score(FieldName)
	assert.False(t, ok)

	assert.Error(t, json.Unmarshal([]byte(`{"confidence":{"name":"high"}}`), &empty))
}

func TestSnapshot_LatestRequest(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		snapshot *Snapshot
		wantID   string
	}{
		{"nil snapshot", nil, ""},
		{"no requests", &Snapshot{}, ""},
		{"newest first", &Snapshot{Requests: []DocumentRequest{{ID: "b", CreatedAt: day(2)}, {ID: "a", CreatedAt: day(1)}}}, "b"},
		{"oldest first", &Snapshot{Requests: []DocumentRequest{{ID: "a", CreatedAt: day(1)}, {ID: "b", CreatedAt: day(2)}}}, "b"},
		{"ties keep first", &Snapshot{Requests: []DocumentRequest{{ID: "x"}, {ID: "y"}}}, "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.snapshot.LatestRequest()
			if tc.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.wantID, got.ID)
		})
	}
}
