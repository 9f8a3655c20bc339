package mocks

import (
	"context"
	"sync"

	"github.com/traqcheck/intake-client/internal/domain"
)

// MockGateway implements the backend client interfaces used by coordinator,
// session and batch.
type MockGateway struct {
	UploadFn           func(ctx context.Context, file domain.File) (*domain.UploadResult, error)
	FetchSnapshotFn    func(ctx context.Context, id domain.CandidateID) (*domain.Snapshot, error)
	RequestDocumentsFn func(ctx context.Context, id domain.CandidateID, opts domain.RequestOptions) (*domain.RequestResult, error)
	SubmitDocumentsFn  func(ctx context.Context, id domain.CandidateID, files domain.DocumentFiles) (*domain.SubmitResult, error)
	ReparseFn          func(ctx context.Context, id domain.CandidateID) (*domain.ReparseResult, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockGateway) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the methods called, in order.
func (m *MockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times name was called.
func (m *MockGateway) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Upload implements the gateway interface.
func (m *MockGateway) Upload(ctx context.Context, file domain.File) (*domain.UploadResult, error) {
	m.record("Upload")
	if m.UploadFn != nil {
		return m.UploadFn(ctx, file)
	}
	return &domain.UploadResult{ID: "c-1", Status: domain.StatusParsing}, nil
}

// FetchSnapshot implements the gateway interface.
func (m *MockGateway) FetchSnapshot(ctx context.Context, id domain.CandidateID) (*domain.Snapshot, error) {
	m.record("FetchSnapshot")
	if m.FetchSnapshotFn != nil {
		return m.FetchSnapshotFn(ctx, id)
	}
	return &domain.Snapshot{ID: id, Status: domain.StatusDone}, nil
}

// RequestDocuments implements the gateway interface.
func (m *MockGateway) RequestDocuments(
	ctx context.Context,
	id domain.CandidateID,
	opts domain.RequestOptions,
) (*domain.RequestResult, error) {
	m.record("RequestDocuments")
	if m.RequestDocumentsFn != nil {
		return m.RequestDocumentsFn(ctx, id, opts)
	}
	return &domain.RequestResult{ID: "r-1"}, nil
}

// SubmitDocuments implements the gateway interface.
func (m *MockGateway) SubmitDocuments(
	ctx context.Context,
	id domain.CandidateID,
	files domain.DocumentFiles,
) (*domain.SubmitResult, error) {
	m.record("SubmitDocuments")
	if m.SubmitDocumentsFn != nil {
		return m.SubmitDocumentsFn(ctx, id, files)
	}
	return &domain.SubmitResult{}, nil
}

// Reparse implements the gateway interface.
func (m *MockGateway) Reparse(ctx context.Context, id domain.CandidateID) (*domain.ReparseResult, error) {
	m.record("Reparse")
	if m.ReparseFn != nil {
		return m.ReparseFn(ctx, id)
	}
	return &domain.ReparseResult{Status: domain.StatusQueued}, nil
}
