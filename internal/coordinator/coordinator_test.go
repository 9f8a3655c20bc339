package coordinator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traqcheck/intake-client/internal/coordinator"
	"github.com/traqcheck/intake-client/internal/domain"
	"github.com/traqcheck/intake-client/internal/gateway"
	"github.com/traqcheck/intake-client/internal/mocks"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var opts = domain.RequestOptions{UploadURL: "http://localhost:5173/upload/c-1"}

func transportErr(status int, msg string) error {
	return &gateway.TransportError{StatusCode: status, Message: msg}
}

func TestRequestDocuments(t *testing.T) {
	t.Run("shows preview then reconciles", func(t *testing.T) {
		gw := &mocks.MockGateway{
			RequestDocumentsFn: func(_ context.Context, _ domain.CandidateID, _ domain.RequestOptions) (*domain.RequestResult, error) {
				return &domain.RequestResult{ID: "r-1", Preview: domain.Preview{Subject: "Docs"}}, nil
			},
		}
		view := &mocks.MockView{}
		c := coordinator.New(gw, view, setupTestLogger())

		result, err := c.RequestDocuments(context.Background(), "c-1", opts)

		require.NoError(t, err)
		assert.Equal(t, "r-1", result.ID)
		assert.Equal(t, []string{"RequestDocuments", "FetchSnapshot"}, gw.Calls())
		assert.Equal(t, []string{"preview", "snapshot"}, view.Writes())
		assert.Equal(t, "Docs", view.Previews[0].Subject)
	})

	t.Run("failure mutates nothing", func(t *testing.T) {
		gw := &mocks.MockGateway{
			RequestDocumentsFn: func(_ context.Context, _ domain.CandidateID, _ domain.RequestOptions) (*domain.RequestResult, error) {
				return nil, transportErr(500, "generator unavailable")
			},
		}
		view := &mocks.MockView{}
		c := coordinator.New(gw, view, setupTestLogger())

		result, err := c.RequestDocuments(context.Background(), "c-1", opts)

		assert.Nil(t, result)
		assert.EqualError(t, err, "generator unavailable")
		assert.Empty(t, view.Writes())
		assert.Equal(t, 0, gw.CallCount("FetchSnapshot"))
	})

	t.Run("failed reconcile keeps result", func(t *testing.T) {
		gw := &mocks.MockGateway{
			FetchSnapshotFn: func(_ context.Context, _ domain.CandidateID) (*domain.Snapshot, error) {
				return nil, transportErr(0, "connection reset")
			},
		}
		view := &mocks.MockView{}
		c := coordinator.New(gw, view, setupTestLogger())

		result, err := c.RequestDocuments(context.Background(), "c-1", opts)

		require.NotNil(t, result)
		assert.ErrorIs(t, err, coordinator.ErrReconcileFailed)
		var terr *gateway.TransportError
		assert.ErrorAs(t, err, &terr)
		assert.Equal(t, []string{"preview"}, view.Writes())
	})
}

func TestSubmitDocuments(t *testing.T) {
	pan := &domain.File{Name: "pan.png", ContentType: "image/png", Data: []byte("png")}
	aadhaar := &domain.File{Name: "aadhaar.pdf", ContentType: "application/pdf", Data: []byte("pdf")}

	t.Run("empty selection never reaches the gateway", func(t *testing.T) {
		for name, sel := range map[string]*coordinator.Selection{"nil": nil, "empty": {}} {
			t.Run(name, func(t *testing.T) {
				gw := &mocks.MockGateway{}
				c := coordinator.New(gw, &mocks.MockView{}, setupTestLogger())

				_, err := c.SubmitDocuments(context.Background(), "c-1", sel)

				assert.ErrorIs(t, err, coordinator.ErrNoDocumentsSelected)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Empty(t, gw.Calls())
			})
		}
	})

	t.Run("success clears selection and reconciles", func(t *testing.T) {
		var sent domain.DocumentFiles
		gw := &mocks.MockGateway{
			SubmitDocumentsFn: func(_ context.Context, _ domain.CandidateID, files domain.DocumentFiles) (*domain.SubmitResult, error) {
				sent = files
				return &domain.SubmitResult{Saved: []domain.SavedDocument{{ID: "d-1", Type: domain.DocumentPAN}}}, nil
			},
		}
		view := &mocks.MockView{}
		c := coordinator.New(gw, view, setupTestLogger())
		sel := &coordinator.Selection{}
		sel.SetPAN(pan)
		sel.SetAadhaar(aadhaar)

		result, err := c.SubmitDocuments(context.Background(), "c-1", sel)

		require.NoError(t, err)
		assert.Len(t, result.Saved, 1)
		assert.Same(t, pan, sent.PAN)
		assert.Same(t, aadhaar, sent.Aadhaar)
		assert.True(t, sel.Empty())
		assert.Equal(t, []string{"SubmitDocuments", "FetchSnapshot"}, gw.Calls())
		assert.Equal(t, []string{"snapshot"}, view.Writes())
	})

	t.Run("failure keeps selection for retry", func(t *testing.T) {
		gw := &mocks.MockGateway{
			SubmitDocumentsFn: func(_ context.Context, _ domain.CandidateID, _ domain.DocumentFiles) (*domain.SubmitResult, error) {
				return nil, transportErr(400, "Provide at least one of PAN or Aadhaar")
			},
		}
		view := &mocks.MockView{}
		c := coordinator.New(gw, view, setupTestLogger())
		sel := &coordinator.Selection{}
		sel.SetAadhaar(aadhaar)

		_, err := c.SubmitDocuments(context.Background(), "c-1", sel)

		assert.EqualError(t, err, "Provide at least one of PAN or Aadhaar")
		assert.Same(t, aadhaar, sel.Files().Aadhaar)
		assert.Empty(t, view.Writes())
	})

	t.Run("failed reconcile still clears selection", func(t *testing.T) {
		gw := &mocks.MockGateway{
			FetchSnapshotFn: func(_ context.Context, _ domain.CandidateID) (*domain.Snapshot, error) {
				return nil, transportErr(502, "bad gateway")
			},
		}
		c := coordinator.New(gw, &mocks.MockView{}, setupTestLogger())
		sel := &coordinator.Selection{}
		sel.SetPAN(pan)

		result, err := c.SubmitDocuments(context.Background(), "c-1", sel)

		assert.NotNil(t, result)
		assert.ErrorIs(t, err, coordinator.ErrReconcileFailed)
		assert.True(t, sel.Empty())
	})
}

func TestReparse(t *testing.T) {
	t.Run("reconciles after reparse", func(t *testing.T) {
		gw := &mocks.MockGateway{
			FetchSnapshotFn: func(_ context.Context, id domain.CandidateID) (*domain.Snapshot, error) {
				return &domain.Snapshot{ID: id, Status: domain.StatusQueued}, nil
			},
		}
		view := &mocks.MockView{}
		c := coordinator.New(gw, view, setupTestLogger())

		result, err := c.Reparse(context.Background(), "c-1")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusQueued, result.Status)
		require.Len(t, view.Snapshots, 1)
		assert.Equal(t, domain.StatusQueued, view.Snapshots[0].Status)
	})

	t.Run("failure", func(t *testing.T) {
		gw := &mocks.MockGateway{
			ReparseFn: func(_ context.Context, _ domain.CandidateID) (*domain.ReparseResult, error) {
				return nil, transportErr(404, "Candidate not found")
			},
		}
		view := &mocks.MockView{}
		c := coordinator.New(gw, view, setupTestLogger())

		_, err := c.Reparse(context.Background(), "missing")

		assert.True(t, gateway.IsNotFound(err))
		assert.Empty(t, view.Writes())
	})
}

func TestRefresh(t *testing.T) {
	view := &mocks.MockView{}
	gw := &mocks.MockGateway{}
	c := coordinator.New(gw, view, nil)

	require.NoError(t, c.Refresh(context.Background(), "c-1"))
	assert.Len(t, view.Snapshots, 1)

	gw.FetchSnapshotFn = func(_ context.Context, _ domain.CandidateID) (*domain.Snapshot, error) {
		return nil, errors.New("offline")
	}
	err := c.Refresh(context.Background(), "c-1")
	assert.EqualError(t, err, "offline")
	assert.NotErrorIs(t, err, coordinator.ErrReconcileFailed)
}

func TestSelection(t *testing.T) {
	var sel coordinator.Selection
	assert.True(t, sel.Empty())

	f := &domain.File{Name: "pan.png"}
	sel.SetPAN(f)
	assert.False(t, sel.Empty())
	assert.Same(t, f, sel.Files().PAN)

	sel.SetPAN(nil)
	assert.True(t, sel.Empty())

	sel.SetAadhaar(f)
	sel.Clear()
	assert.True(t, sel.Empty())
}
