package mocks

import (
	"sync"

	"github.com/traqcheck/intake-client/internal/domain"
)

// MockView records what was written to a view.
type MockView struct {
	mu        sync.Mutex
	Snapshots []*domain.Snapshot
	Previews  []domain.Preview
	// Order lists "snapshot" and "preview" in write order.
	Order []string
}

// SetSnapshot implements coordinator.View.
func (m *MockView) SetSnapshot(snapshot *domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = append(m.Snapshots, snapshot)
	m.Order = append(m.Order, "snapshot")
}

// SetPreview implements coordinator.View.
func (m *MockView) SetPreview(preview domain.Preview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Previews = append(m.Previews, preview)
	m.Order = append(m.Order, "preview")
}

// Writes returns the write order.
func (m *MockView) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Order...)
}
