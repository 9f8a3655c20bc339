package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/traqcheck/intake-client/internal/domain"
)

// Gateway is the part of the backend client the coordinator uses.
type Gateway interface {
	FetchSnapshot(ctx context.Context, id domain.CandidateID) (*domain.Snapshot, error)
	RequestDocuments(ctx context.Context, id domain.CandidateID, opts domain.RequestOptions) (*domain.RequestResult, error)
	SubmitDocuments(ctx context.Context, id domain.CandidateID, files domain.DocumentFiles) (*domain.SubmitResult, error)
	Reparse(ctx context.Context, id domain.CandidateID) (*domain.ReparseResult, error)
}

// View is the part of the view state the coordinator writes.
type View interface {
	SetSnapshot(snapshot *domain.Snapshot)
	SetPreview(preview domain.Preview)
}

// Coordinator runs actions against one gateway and one view.
type Coordinator struct {
	gateway Gateway
	view    View
	logger  *slog.Logger
}

// New creates a Coordinator.
func New(gateway Gateway, view View, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		gateway: gateway,
		view:    view,
		logger:  logger.With("component", "coordinator"),
	}
}

// RequestDocuments asks the backend for a document request. On success the
// returned preview is shown at once, then the candidate is re-read so the
// request history is current. A failed request changes nothing.
func (c *Coordinator) RequestDocuments(
	ctx context.Context,
	id domain.CandidateID,
	opts domain.RequestOptions,
) (*domain.RequestResult, error) {
	result, err := c.gateway.RequestDocuments(ctx, id, opts)
	if err != nil {
		c.logger.WarnContext(ctx, "document request failed", "candidate_id", id, "error", err)
		return nil, err
	}

	c.view.SetPreview(result.Preview)

	if err := c.reconcile(ctx, id); err != nil {
		return result, err
	}
	return result, nil
}

// SubmitDocuments uploads the selected documents. Nothing is sent when the
// selection is empty. The selection is cleared only after the backend
// accepts it, so a failed submission can be retried as is.
func (c *Coordinator) SubmitDocuments(
	ctx context.Context,
	id domain.CandidateID,
	sel *Selection,
) (*domain.SubmitResult, error) {
	if sel == nil || sel.Empty() {
		return nil, ErrNoDocumentsSelected
	}

	result, err := c.gateway.SubmitDocuments(ctx, id, sel.Files())
	if err != nil {
		c.logger.WarnContext(ctx, "document submission failed", "candidate_id", id, "error", err)
		return nil, err
	}

	sel.Clear()

	if err := c.reconcile(ctx, id); err != nil {
		return result, err
	}
	return result, nil
}

// Reparse re-queues extraction and re-reads the candidate. It does not
// restart polling; callers that want to follow the new extraction start a
// poll themselves.
func (c *Coordinator) Reparse(ctx context.Context, id domain.CandidateID) (*domain.ReparseResult, error) {
	result, err := c.gateway.Reparse(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "reparse failed", "candidate_id", id, "error", err)
		return nil, err
	}

	if err := c.reconcile(ctx, id); err != nil {
		return result, err
	}
	return result, nil
}

// Refresh re-reads the candidate once.
func (c *Coordinator) Refresh(ctx context.Context, id domain.CandidateID) error {
	snapshot, err := c.gateway.FetchSnapshot(ctx, id)
	if err != nil {
		return err
	}
	c.view.SetSnapshot(snapshot)
	return nil
}

func (c *Coordinator) reconcile(ctx context.Context, id domain.CandidateID) error {
	if err := c.Refresh(ctx, id); err != nil {
		c.logger.WarnContext(ctx, "reconciling read failed", "candidate_id", id, "error", err)
		return fmt.Errorf("%w: %w", ErrReconcileFailed, err)
	}
	return nil
}
