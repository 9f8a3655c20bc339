package fakebackend

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/traqcheck/intake-client/internal/domain"
)

// Routes, used as keys for Hits and FailNext.
const (
	RouteUpload   = "POST /candidates/upload"
	RouteList     = "GET /candidates"
	RouteGet      = "GET /candidates/{id}"
	RouteRequest  = "POST /candidates/{id}/request-documents"
	RouteSubmit   = "POST /candidates/{id}/submit-documents"
	RouteReparse  = "POST /candidates/{id}/reparse"
	RouteHealthz  = "GET /healthz"
	maxResumeSize = 5 << 20
)

// Failure is a canned response served instead of the real handler.
type Failure struct {
	Status      int
	Body        string
	ContentType string
}

// UploadedFile records what a multipart part carried.
type UploadedFile struct {
	Field       string
	Name        string
	ContentType string
	Size        int
}

type candidate struct {
	snapshot domain.Snapshot
	script   []domain.ExtractionStatus
	resume   UploadedFile
	options  []domain.RequestOptions
	updated  time.Time
}

// Server is an in-memory backend. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	candidates    map[domain.CandidateID]*candidate
	order         []domain.CandidateID
	hits          map[string]int
	failures      map[string][]Failure
	requestIDs    []string
	defaultScript []domain.ExtractionStatus
	clock         time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithScript sets the status sequence new uploads advance through, one
// step per snapshot read. The last status sticks.
func WithScript(statuses ...domain.ExtractionStatus) Option {
	return func(s *Server) {
		s.defaultScript = append([]domain.ExtractionStatus(nil), statuses...)
	}
}

// New starts a Server and closes it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		candidates:    make(map[domain.CandidateID]*candidate),
		hits:          make(map[string]int),
		failures:      make(map[string][]Failure),
		defaultScript: []domain.ExtractionStatus{domain.StatusParsing, domain.StatusDone},
		clock:         time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordRequestID)

	r.Get("/healthz", s.wrap(RouteHealthz, s.handleHealth))
	r.Route("/candidates", func(r chi.Router) {
		r.Get("/", s.wrap(RouteList, s.handleList))
		r.Post("/upload", s.wrap(RouteUpload, s.handleUpload))
		r.Get("/{id}", s.wrap(RouteGet, s.handleGet))
		r.Post("/{id}/request-documents", s.wrap(RouteRequest, s.handleRequest))
		r.Post("/{id}/submit-documents", s.wrap(RouteSubmit, s.handleSubmit))
		r.Post("/{id}/reparse", s.wrap(RouteReparse, s.handleReparse))
	})
	return r
}

func (s *Server) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			s.mu.Lock()
			s.requestIDs = append(s.requestIDs, id)
			s.mu.Unlock()
		}
		next.ServeHTTP(w, r)
	})
}

// wrap counts the hit and serves a queued failure if one is pending.
func (s *Server) wrap(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[route]++
		var failure *Failure
		if queued := s.failures[route]; len(queued) > 0 {
			failure = &queued[0]
			s.failures[route] = queued[1:]
		}
		s.mu.Unlock()

		if failure != nil {
			if failure.ContentType != "" {
				w.Header().Set("Content-Type", failure.ContentType)
			}
			w.WriteHeader(failure.Status)
			_, _ = io.WriteString(w, failure.Body)
			return
		}
		h(w, r)
	}
}

// FailNext queues failures for route, served in order before normal
// handling resumes.
func (s *Server) FailNext(route string, failures ...Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failures...)
}

// Hits returns how many requests route has received.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// RequestIDs returns every X-Request-ID seen, in arrival order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Seed stores a candidate directly. Reads then advance through script, if
// any.
func (s *Server) Seed(snapshot domain.Snapshot, script ...domain.ExtractionStatus) domain.CandidateID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.ID == "" {
		snapshot.ID = domain.CandidateID(uuid.New().String())
	}
	s.candidates[snapshot.ID] = &candidate{
		snapshot: snapshot,
		script:   append([]domain.ExtractionStatus(nil), script...),
		updated:  s.tick(),
	}
	s.order = append(s.order, snapshot.ID)
	return snapshot.ID
}

// SetScript replaces the remaining status sequence of a candidate.
func (s *Server) SetScript(id domain.CandidateID, statuses ...domain.ExtractionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.candidates[id]; ok {
		c.script = append([]domain.ExtractionStatus(nil), statuses...)
	}
}

// AddRequest appends a request record with an arbitrary raw preview.
func (s *Server) AddRequest(id domain.CandidateID, req domain.DocumentRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.candidates[id]; ok {
		if req.CreatedAt.IsZero() {
			req.CreatedAt = s.tick()
		}
		c.snapshot.Requests = append([]domain.DocumentRequest{req}, c.snapshot.Requests...)
	}
}

// Snapshot returns the stored state of a candidate without advancing it.
func (s *Server) Snapshot(id domain.CandidateID) (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return domain.Snapshot{}, false
	}
	return c.snapshot, true
}

// Resume returns the uploaded resume of a candidate.
func (s *Server) Resume(id domain.CandidateID) (UploadedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return UploadedFile{}, false
	}
	return c.resume, true
}

// RequestOptions returns the bodies of every document request made for a
// candidate.
func (s *Server) RequestOptions(id domain.CandidateID) []domain.RequestOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil
	}
	return append([]domain.RequestOptions(nil), c.options...)
}

// tick returns strictly increasing timestamps so ordering never ties.
// Callers hold s.mu.
func (s *Server) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*candidate, bool) {
	id := domain.CandidateID(chi.URLParam(r, "id"))
	c, ok := s.candidates[id]
	if !ok {
		respondWithDetail(w, http.StatusNotFound, "Candidate not found")
		return nil, false
	}
	return c, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]domain.Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		c := s.candidates[s.order[i]]
		summaries = append(summaries, domain.Summary{
			ID:        c.snapshot.ID,
			Name:      c.snapshot.Extracted.Name,
			Email:     c.snapshot.Extracted.Email,
			Company:   c.snapshot.Extracted.Company,
			Status:    c.snapshot.Status,
			UpdatedAt: c.updated,
		})
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2 * maxResumeSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	resume, ok := readPart(r.MultipartForm, "resume")
	if !ok {
		respondWithDetail(w, http.StatusBadRequest, "resume file is required")
		return
	}
	if resume.Size > maxResumeSize {
		respondWithDetail(w, http.StatusRequestEntityTooLarge, "File too large (max 5MB)")
		return
	}

	s.mu.Lock()
	id := domain.CandidateID(uuid.New().String())
	status := domain.StatusParsing
	s.candidates[id] = &candidate{
		snapshot: domain.Snapshot{ID: id, Status: status, Confidence: domain.Confidence{}},
		script:   append([]domain.ExtractionStatus(nil), s.defaultScript...),
		resume:   resume,
		updated:  s.tick(),
	}
	s.order = append(s.order, id)
	s.mu.Unlock()

	respondWithJSON(w, http.StatusOK, domain.UploadResult{ID: id, Status: status})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if len(c.script) > 0 {
		c.snapshot.Status = c.script[0]
		c.script = c.script[1:]
		if c.snapshot.Status == domain.StatusDone && c.snapshot.Extracted.Name == "" {
			c.snapshot.Extracted = domain.Extracted{
				Name:    "Priya Sharma",
				Email:   "priya@example.com",
				Phone:   "+91 98765 43210",
				Company: "Acme Corp",
				Skills:  []string{"go", "sql"},
			}
			c.snapshot.Confidence = domain.Confidence{
				domain.FieldName:  0.98,
				domain.FieldEmail: 0.95,
				domain.FieldPhone: 0.7,
			}
		}
		c.updated = s.tick()
	}
	respondWithJSON(w, http.StatusOK, c.snapshot)
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	var opts domain.RequestOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	c.options = append(c.options, opts)

	created := s.tick()
	preview := buildPreview(c.snapshot.Extracted.Name, opts, created)
	raw, err := json.Marshal(preview)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to encode preview")
		return
	}

	channel := opts.Channel
	if channel == domain.ChannelAuto {
		channel = domain.ChannelEmail
		if c.snapshot.Extracted.Email == "" && c.snapshot.Extracted.Phone != "" {
			channel = domain.ChannelSMS
		}
	}
	req := domain.DocumentRequest{
		ID:        uuid.New().String(),
		Channel:   channel,
		CreatedAt: created,
		Preview:   raw,
	}
	c.snapshot.Requests = append([]domain.DocumentRequest{req}, c.snapshot.Requests...)

	respondWithJSON(w, http.StatusOK, domain.RequestResult{ID: req.ID, Preview: preview})
}

func buildPreview(name string, opts domain.RequestOptions, at time.Time) domain.Preview {
	if name == "" {
		name = "there"
	}
	org := opts.OrgName
	if org == "" {
		org = "TraqCheck"
	}

	p := domain.Preview{
		Subject: fmt.Sprintf("%s: please share your PAN and Aadhaar", org),
		EmailBody: fmt.Sprintf("Hi %s,\n\nPlease upload your PAN and Aadhaar at %s.\n\nQuestions? %s\n",
			name, opts.UploadURL, opts.SupportEmail),
		SMSBody: fmt.Sprintf("%s: upload PAN/Aadhaar at %s", org, opts.UploadURL),
	}
	if opts.SendNow {
		sent := true
		p.Sent = &sent
		p.SentAt = at.Format(time.RFC3339)
	}
	return p
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(4 * maxResumeSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	pan, hasPAN := readPart(r.MultipartForm, "pan")
	aadhaar, hasAadhaar := readPart(r.MultipartForm, "aadhaar")
	if !hasPAN && !hasAadhaar {
		respondWithError(w, http.StatusBadRequest, "Provide at least one of PAN or Aadhaar")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var saved []domain.SavedDocument
	add := func(f UploadedFile, typ domain.DocumentType) {
		doc := domain.Document{
			ID:         uuid.New().String(),
			Type:       typ,
			Filename:   f.Name,
			UploadedAt: s.tick(),
		}
		c.snapshot.Documents = append(c.snapshot.Documents, doc)
		saved = append(saved, domain.SavedDocument{ID: doc.ID, Type: typ, Filename: f.Name})
	}
	if hasPAN {
		add(pan, domain.DocumentPAN)
	}
	if hasAadhaar {
		add(aadhaar, domain.DocumentAadhaar)
	}

	respondWithJSON(w, http.StatusOK, domain.SubmitResult{Saved: saved})
}

func (s *Server) handleReparse(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	c.snapshot.Status = domain.StatusQueued
	c.updated = s.tick()

	respondWithJSON(w, http.StatusOK, domain.ReparseResult{Status: domain.StatusQueued})
}

func readPart(form *multipart.Form, field string) (UploadedFile, bool) {
	if form == nil || len(form.File[field]) == 0 {
		return UploadedFile{}, false
	}
	fh := form.File[field][0]
	return UploadedFile{
		Field:       field,
		Name:        fh.Filename,
		ContentType: strings.TrimSpace(fh.Header.Get("Content-Type")),
		Size:        int(fh.Size),
	}, true
}
