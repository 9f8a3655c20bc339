package coordinator

import (
	"sync"

	"github.com/traqcheck/intake-client/internal/domain"
)

// Selection holds the documents an operator has picked but not yet
// submitted. It survives a failed submission so it can be retried.
type Selection struct {
	mu      sync.Mutex
	pan     *domain.File
	aadhaar *domain.File
}

// SetPAN selects a PAN file; nil deselects it.
func (s *Selection) SetPAN(f *domain.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pan = f
}

// SetAadhaar selects an Aadhaar file; nil deselects it.
func (s *Selection) SetAadhaar(f *domain.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aadhaar = f
}

// Files returns the current selection.
func (s *Selection) Files() domain.DocumentFiles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.DocumentFiles{PAN: s.pan, Aadhaar: s.aadhaar}
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool {
	return s.Files().Empty()
}

// Clear deselects both documents.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pan = nil
	s.aadhaar = nil
}
