package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traqcheck/intake-client/internal/config"
	"github.com/traqcheck/intake-client/internal/domain"
	"github.com/traqcheck/intake-client/internal/redact"
)

// RequestIDHeader carries a per-call identifier so client and backend logs
// can be correlated.
const RequestIDHeader = "X-Request-ID"

// Client calls the candidate backend. Every operation is a single attempt;
// failures are returned as *TransportError, rejected input as
// *domain.ValidationError.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxUploadBytes int64
	logger         *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for cfg.BaseURL. Trailing slashes are stripped
// so paths can be appended directly.
func NewClient(cfg config.APIConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", cfg.BaseURL)
	}

	c := &Client{
		baseURL:        base,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         logger.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends a resume as the multipart field "resume".
func (c *Client) Upload(ctx context.Context, file domain.File) (*domain.UploadResult, error) {
	if err := c.checkFile(file); err != nil {
		return nil, err
	}

	body, contentType, err := encodeMultipart(formPart{field: "resume", file: &file})
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}

	var result domain.UploadResult
	if err := c.do(ctx, http.MethodPost, "/candidates/upload", body, contentType, &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, malformed(http.StatusOK, errors.New("upload response has no id"))
	}

	c.logger.InfoContext(ctx, "resume uploaded",
		"candidate_id", result.ID,
		"status", result.Status,
		"bytes", file.Size())
	return &result, nil
}

// FetchSnapshot reads the full current view of a candidate.
func (c *Client) FetchSnapshot(ctx context.Context, id domain.CandidateID) (*domain.Snapshot, error) {
	if id == "" {
		return nil, domain.ErrEmptyCandidateID
	}

	var snapshot domain.Snapshot
	if err := c.do(ctx, http.MethodGet, candidatePath(id, ""), nil, "", &snapshot); err != nil {
		return nil, err
	}
	if snapshot.ID == "" {
		snapshot.ID = id
	}
	return &snapshot, nil
}

// ListSummaries returns the candidate list, newest first as the backend
// orders it.
func (c *Client) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	var summaries []domain.Summary
	if err := c.do(ctx, http.MethodGet, "/candidates", nil, "", &summaries); err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	return summaries, nil
}

// RequestDocuments asks the backend to generate (and optionally send) a
// PAN/Aadhaar request for the candidate.
func (c *Client) RequestDocuments(
	ctx context.Context,
	id domain.CandidateID,
	opts domain.RequestOptions,
) (*domain.RequestResult, error) {
	if id == "" {
		return nil, domain.ErrEmptyCandidateID
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(opts)
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("encode request: %v", err), Err: err}
	}

	var result domain.RequestResult
	if err := c.do(ctx, http.MethodPost, candidatePath(id, "/request-documents"),
		bytes.NewReader(payload), "application/json", &result); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "document request created",
		"candidate_id", id,
		"request_id", result.ID,
		"channel", opts.Channel,
		"send_now", opts.SendNow)
	return &result, nil
}

// SubmitDocuments uploads the attached PAN and/or Aadhaar files.
func (c *Client) SubmitDocuments(
	ctx context.Context,
	id domain.CandidateID,
	files domain.DocumentFiles,
) (*domain.SubmitResult, error) {
	if id == "" {
		return nil, domain.ErrEmptyCandidateID
	}
	if err := files.Validate(); err != nil {
		return nil, err
	}
	for _, f := range []*domain.File{files.PAN, files.Aadhaar} {
		if f == nil {
			continue
		}
		if err := c.checkFile(*f); err != nil {
			return nil, err
		}
	}

	body, contentType, err := encodeMultipart(
		formPart{field: "pan", file: files.PAN},
		formPart{field: "aadhaar", file: files.Aadhaar},
	)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}

	var result domain.SubmitResult
	if err := c.do(ctx, http.MethodPost, candidatePath(id, "/submit-documents"), body, contentType, &result); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "documents submitted",
		"candidate_id", id,
		"saved_count", len(result.Saved))
	return &result, nil
}

// Reparse re-queues extraction for a candidate's stored resume.
func (c *Client) Reparse(ctx context.Context, id domain.CandidateID) (*domain.ReparseResult, error) {
	if id == "" {
		return nil, domain.ErrEmptyCandidateID
	}

	var result domain.ReparseResult
	if err := c.do(ctx, http.MethodPost, candidatePath(id, "/reparse"), nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks that the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, "", nil)
}

func (c *Client) checkFile(file domain.File) error {
	if err := file.Validate(); err != nil {
		return err
	}
	if c.maxUploadBytes > 0 && file.Size() > c.maxUploadBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit %d: %w",
			ErrFileTooLarge, file.Name, file.Size(), c.maxUploadBytes,
			domain.NewValidationError("file", "file too large"))
	}
	return nil
}

// do performs one request and decodes a 2xx JSON body into out.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	body io.Reader,
	contentType string,
	out interface{},
) error {
	reqID := uuid.New().String()
	start := time.Now()
	logger := c.logger.With("req_id", reqID, "method", method, "path", path)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.DebugContext(ctx, "backend request failed",
			"error", redact.Error(err),
			"elapsed_ms", time.Since(start).Milliseconds())
		return &TransportError{Message: err.Error(), Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("read response: %v", err),
			Err:        err,
		}
	}

	logger.DebugContext(ctx, "backend response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		terr := newStatusError(resp.StatusCode, raw)
		logger.DebugContext(ctx, "backend returned error",
			"status", resp.StatusCode,
			"message", redact.String(terr.Message))
		return terr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed(resp.StatusCode, err)
	}
	return nil
}

func malformed(status int, err error) *TransportError {
	return &TransportError{
		StatusCode: status,
		Message:    fmt.Sprintf("%s: %v", ErrMalformedResponse, err),
		Err:        fmt.Errorf("%w: %w", ErrMalformedResponse, err),
	}
}

func candidatePath(id domain.CandidateID, suffix string) string {
	return "/candidates/" + url.PathEscape(string(id)) + suffix
}
