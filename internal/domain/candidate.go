package domain

import (
	"encoding/json"
	"time"
)

// CandidateID is the opaque identifier the backend assigns at upload time.
type CandidateID string

func (id CandidateID) String() string {
	return string(id)
}

// Field names the extracted profile fields that carry a confidence score.
type Field string

// Extracted profile fields.
const (
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldCompany     Field = "company"
	FieldDesignation Field = "designation"
	FieldSkills      Field = "skills"
)

// Extracted holds the structured fields parsed out of a resume.
// Any field may be empty while extraction is still running.
type Extracted struct {
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Company     string   `json:"company,omitempty"`
	Designation string   `json:"designation,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

// Confidence maps each extracted field to an independent score in [0, 1].
// A missing key means the backend reported no score for that field.
type Confidence map[Field]float64

// UnmarshalJSON drops null scores so they read as unreported rather than 0.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var raw map[Field]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*c = nil
		return nil
	}
	scores := make(Confidence, len(raw))
	for f, v := range raw {
		if v != nil {
			scores[f] = *v
		}
	}
	*c = scores
	return nil
}

// Score returns the confidence for f and whether one was reported.
func (c Confidence) Score(f Field) (float64, bool) {
	v, ok := c[f]
	return v, ok
}

// DocumentType identifies a supporting identity document.
type DocumentType string

// Supporting document types accepted by the backend.
const (
	DocumentPAN     DocumentType = "PAN"
	DocumentAadhaar DocumentType = "AADHAAR"
)

// Document is an uploaded supporting document as listed in a snapshot.
type Document struct {
	ID         string       `json:"id"`
	Type       DocumentType `json:"type"`
	Filename   string       `json:"filename"`
	UploadedAt time.Time    `json:"uploaded_at"`
	Verified   bool         `json:"verified,omitempty"`
}

// DocumentRequest is one past request for documents. Preview is kept raw:
// the backend stores whatever the generator produced, so its shape is only
// trusted after IsWellFormedPreview.
type DocumentRequest struct {
	ID        string          `json:"id"`
	Channel   Channel         `json:"channel"`
	CreatedAt time.Time       `json:"created_at"`
	Preview   json.RawMessage `json:"preview,omitempty"`
}

// Snapshot is one complete read of a candidate. It is always replaced as a
// whole and must not be mutated after it has been handed to a view.
type Snapshot struct {
	ID         CandidateID       `json:"id"`
	Status     ExtractionStatus  `json:"extraction_status"`
	Extracted  Extracted         `json:"extracted"`
	Confidence Confidence        `json:"confidence"`
	Documents  []Document        `json:"documents"`
	Requests   []DocumentRequest `json:"requests"`
}

// LatestRequest returns the most recent document request, or nil.
// The backend lists requests newest first; when created_at values tie the
// earlier position wins.
func (s *Snapshot) LatestRequest() *DocumentRequest {
	if s == nil || len(s.Requests) == 0 {
		return nil
	}
	latest := 0
	for i := 1; i < len(s.Requests); i++ {
		if s.Requests[i].CreatedAt.After(s.Requests[latest].CreatedAt) {
			latest = i
		}
	}
	return &s.Requests[latest]
}

// Summary is one row of the candidate list.
type Summary struct {
	ID        CandidateID      `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Company   string           `json:"company"`
	Status    ExtractionStatus `json:"extraction_status"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// UploadResult is returned by a resume upload.
type UploadResult struct {
	ID     CandidateID      `json:"id"`
	Status ExtractionStatus `json:"status"`
}

// RequestResult is returned when a document request is created.
type RequestResult struct {
	ID      string  `json:"id"`
	Preview Preview `json:"preview"`
}

// SavedDocument is one document accepted by a submission.
type SavedDocument struct {
	ID       string       `json:"id"`
	Type     DocumentType `json:"type"`
	Filename string       `json:"filename"`
}

// SubmitResult is returned when supporting documents are submitted.
type SubmitResult struct {
	Saved []SavedDocument `json:"saved"`
}

// ReparseResult is returned when extraction is re-queued.
type ReparseResult struct {
	Status ExtractionStatus `json:"status"`
}
