package batch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/traqcheck/intake-client/internal/domain"
	"github.com/traqcheck/intake-client/internal/poller"
	"github.com/traqcheck/intake-client/internal/viewstate"
)

// Session is the per-file view instance a worker drives.
type Session interface {
	Upload(ctx context.Context, file domain.File) (*domain.UploadResult, *poller.Handle, error)
	View() *viewstate.State
	Close() error
}

// SessionFactory creates a fresh Session for each file.
type SessionFactory func() Session

// Job is one file queued for upload.
type Job struct {
	Index int
	File  domain.File
}

// Result is the outcome of one Job. Snapshot holds the last snapshot the
// session saw, which may be the upload answer alone when polling failed.
type Result struct {
	Index       int
	Name        string
	CandidateID domain.CandidateID
	Snapshot    *domain.Snapshot
	Outcome     poller.State
	Err         error
}

// OK reports whether the file was uploaded and polled to a terminal status.
func (r Result) OK() bool {
	return r.Err == nil && r.Outcome == poller.StateTerminal
}

// WorkerPoolConfig holds configuration options for the worker pool.
type WorkerPoolConfig struct {
	// WorkerCount determines how many files are processed concurrently.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// WorkerPool uploads files through a bounded set of worker goroutines.
type WorkerPool struct {
	newSession  SessionFactory
	workerCount int
	logger      *slog.Logger

	// errorHandler is called when a job fails. If nil, errors are only
	// logged.
	errorHandler func(job Job, err error)
}

// NewWorkerPool creates a worker pool that opens sessions with factory.
func NewWorkerPool(factory SessionFactory, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "batch")

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	return &WorkerPool{
		newSession:  factory,
		workerCount: workerCount,
		logger:      logger,
	}
}

// SetErrorHandler sets a handler for failed jobs. It runs on the worker
// goroutine and may be called concurrently.
func (p *WorkerPool) SetErrorHandler(handler func(job Job, err error)) {
	p.errorHandler = handler
}

// WorkerCount returns the number of workers Run starts.
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// Run uploads every file and waits for each poll to end. Results are
// returned in input order. Cancelling ctx abandons queued files and ends
// running polls; their results carry ctx's error.
func (p *WorkerPool) Run(ctx context.Context, files []domain.File) ([]Result, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	jobs := make(chan Job, len(files))
	for i, f := range files {
		jobs <- Job{Index: i, File: f}
	}
	close(jobs)

	results := make([]Result, len(files))
	workers := p.workerCount
	if workers > len(files) {
		workers = len(files)
	}

	p.logger.Info("starting batch upload",
		"files", len(files),
		"workers", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.worker(ctx, workerID, jobs, results)
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	p.logger.Info("batch upload finished",
		"files", len(files),
		"failed", failed)
	return results, nil
}

// worker processes jobs until the channel drains. Each job writes only its
// own slot in results.
func (p *WorkerPool) worker(ctx context.Context, id int, jobs <-chan Job, results []Result) {
	p.logger.Debug("starting worker", "worker_id", id)
	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results[job.Index] = Result{Index: job.Index, Name: job.File.Name, Err: err}
			p.fail(job, err)
			continue
		}
		results[job.Index] = p.process(ctx, id, job)
	}
	p.logger.Debug("stopping worker", "worker_id", id)
}

func (p *WorkerPool) process(ctx context.Context, workerID int, job Job) Result {
	logger := p.logger.With(
		"file", job.File.Name,
		"worker_id", workerID,
	)
	result := Result{Index: job.Index, Name: job.File.Name}

	sess := p.newSession()
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("failed to close session", "error", err)
		}
	}()

	uploaded, h, err := sess.Upload(ctx, job.File)
	if err != nil {
		logger.Error("upload failed", "error", err)
		result.Err = err
		p.fail(job, err)
		return result
	}
	result.CandidateID = uploaded.ID
	logger = logger.With("candidate_id", uploaded.ID)

	waitErr := h.Wait(ctx)
	result.Snapshot = sess.View().Snapshot()
	result.Outcome = h.Outcome()
	switch {
	case waitErr != nil:
		result.Err = waitErr
	case result.Outcome == poller.StateCancelled:
		result.Err = context.Canceled
	}

	if result.Err != nil {
		logger.Error("polling did not complete", "outcome", result.Outcome.String(), "error", result.Err)
		p.fail(job, result.Err)
		return result
	}

	logger.Info("file processed",
		"outcome", result.Outcome.String(),
		"status", result.Snapshot.Status)
	return result
}

func (p *WorkerPool) fail(job Job, err error) {
	if p.errorHandler != nil {
		p.errorHandler(job, err)
	}
}
