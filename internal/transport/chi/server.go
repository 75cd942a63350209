package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semdocs/internal/domain"
	"github.com/kailas-cloud/semdocs/internal/domain/match"
	"github.com/kailas-cloud/semdocs/internal/domain/query"
	"github.com/kailas-cloud/semdocs/internal/logger"
	healthuc "github.com/kailas-cloud/semdocs/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/semdocs/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/semdocs/internal/usecase/search"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 64 << 10

const (
	msgDocumentCreated = "Document created successfully"
	msgInternal        = "internal error"
	msgTrailingData    = "Request body must contain a single JSON object"
	createdAtLayout    = "2006-01-02T15:04:05.000Z07:00"
)

// Authenticator turns a request's bearer credential into a verified identity.
type Authenticator interface {
	Authenticate(r *http.Request) (domain.Identity, error)
}

// Ingester stores a document for a verified caller.
type Ingester interface {
	Ingest(ctx context.Context, caller domain.Identity, title, content string) (ingestuc.Receipt, error)
}

// Searcher answers a semantic query for a verified caller.
type Searcher interface {
	Search(ctx context.Context, caller domain.Identity, q query.Query) (searchuc.Outcome, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string, meta *errorMetadata) bool

// Server serves the ingestion and query endpoints.
type Server struct {
	auth          Authenticator
	ingest        Ingester
	search        Searcher
	health        HealthChecker
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxBodyBytes <= 0 uses DefaultMaxBodyBytes.
func NewServer(
	auth Authenticator,
	ingest Ingester,
	search Searcher,
	health HealthChecker,
	maxBodyBytes int64,
) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		auth:         auth,
		ingest:       ingest,
		search:       search,
		health:       health,
		maxBodyBytes: maxBodyBytes,
	}
	// Every pipeline failure is a 400; the code tells the kinds apart.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, domain.KindValidation),
		sentinelHandler(domain.ErrAuthentication, http.StatusBadRequest, domain.KindAuthentication),
		sentinelHandler(domain.ErrUpstream, http.StatusBadRequest, domain.KindUpstream),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, domain.KindPersistence),
		sentinelHandler(domain.ErrPersistence, http.StatusBadRequest, domain.KindPersistence),
		sentinelHandler(domain.ErrSearch, http.StatusBadRequest, domain.KindSearch),
	}
	return s
}

// --- Wire types ---

type ingestRequest struct {
	Title   any `json:"title"`
	Content any `json:"content"`
}

type ingestResponse struct {
	Success    bool           `json:"success"`
	DocumentID string         `json:"documentId"`
	Message    string         `json:"message"`
	Metadata   ingestMetadata `json:"metadata"`
}

type ingestMetadata struct {
	TokensUsed          int `json:"tokensUsed"`
	EmbeddingDimensions int `json:"embeddingDimensions"`
}

type searchRequest struct {
	Query          any `json:"query"`
	MatchThreshold any `json:"matchThreshold"`
	MatchCount     any `json:"matchCount"`
}

type searchResponse struct {
	Success  bool           `json:"success"`
	Results  []searchResult `json:"results"`
	Metadata searchMetadata `json:"metadata"`
}

type searchResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
	CreatedAt  string  `json:"created_at"`
}

type searchMetadata struct {
	QueryTokens    int     `json:"queryTokens"`
	ResultCount    int     `json:"resultCount"`
	ExecutionTime  string  `json:"executionTime"`
	MatchThreshold float64 `json:"matchThreshold"`
	MatchCount     int     `json:"matchCount"`
}

type errorResponse struct {
	Success  bool           `json:"success"`
	Error    string         `json:"error"`
	Code     domain.Kind    `json:"code"`
	Metadata *errorMetadata `json:"metadata,omitempty"`
}

type errorMetadata struct {
	ExecutionTime string `json:"executionTime"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- Handlers ---

// Ingest handles POST /functions/v1/generate-embedding and POST /documents.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.WithUsage(r.Context())

	caller, err := s.auth.Authenticate(r)
	if err != nil {
		s.handleDomainError(ctx, w, err, nil)
		return
	}
	ctx = logger.With(ctx, zap.String("user_id", caller.UserID))

	var req ingestRequest
	if err := s.decode(w, r, &req); err != nil {
		s.handleDomainError(ctx, w, err, nil)
		return
	}

	title, _ := req.Title.(string)
	content, _ := req.Content.(string)

	receipt, err := s.ingest.Ingest(ctx, caller, title, content)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(ctx, w, err, nil)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		Success:    true,
		DocumentID: receipt.DocumentID,
		Message:    msgDocumentCreated,
		Metadata: ingestMetadata{
			TokensUsed:          receipt.TokensUsed,
			EmbeddingDimensions: receipt.Dimensions,
		},
	})
}

// Search handles POST /functions/v1/semantic-search and POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, usage := domain.WithUsage(r.Context())

	fail := func(err error) {
		setEmbeddingHeaders(w, usage)
		s.handleDomainError(ctx, w, err, &errorMetadata{ExecutionTime: elapsed(start)})
	}

	caller, err := s.auth.Authenticate(r)
	if err != nil {
		fail(err)
		return
	}
	ctx = logger.With(ctx, zap.String("user_id", caller.UserID))

	var req searchRequest
	if err := s.decode(w, r, &req); err != nil {
		fail(err)
		return
	}

	q, err := queryFromRequest(req)
	if err != nil {
		fail(err)
		return
	}

	out, err := s.search.Search(ctx, caller, q)
	if err != nil {
		fail(err)
		return
	}

	results := make([]searchResult, len(out.Matches))
	for i := range out.Matches {
		results[i] = matchToResult(&out.Matches[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{
		Success: true,
		Results: results,
		Metadata: searchMetadata{
			QueryTokens:    out.QueryTokens,
			ResultCount:    len(results),
			ExecutionTime:  elapsed(start),
			MatchThreshold: q.Threshold(),
			MatchCount:     q.Count(),
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

// decode reads a size-limited body holding exactly one JSON value.
// Malformed, oversized or trailing input is a validation error.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validationf("Request body is required")
		}
		return s.bodyError(err, "Invalid JSON body")
	}

	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return domain.Validationf(msgTrailingData)
	default:
		return s.bodyError(err, msgTrailingData)
	}
}

func (s *Server) bodyError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.Validationf("Request body must be at most %d bytes", s.maxBodyBytes)
	}
	return fmt.Errorf("%w: %w", domain.Validationf("%s", msg), err)
}

func queryFromRequest(req searchRequest) (query.Query, error) {
	text, _ := req.Query.(string)

	threshold, err := optionalNumber(req.MatchThreshold, "Match threshold must be a number")
	if err != nil {
		return query.Query{}, err
	}
	count, err := optionalNumber(req.MatchCount, "Match count must be a number")
	if err != nil {
		return query.Query{}, err
	}

	q, err := query.New(text, threshold, count)
	if err != nil {
		return query.Query{}, fmt.Errorf("build query: %w", err)
	}
	return q, nil
}

// optionalNumber treats absent and null as unset; anything but a JSON number is rejected.
func optionalNumber(v any, msg string) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, domain.Validationf("%s", msg)
	}
	return &f, nil
}

func matchToResult(m *match.Match) searchResult {
	return searchResult{
		ID:         m.ID(),
		Title:      m.Title(),
		Content:    m.Content(),
		Similarity: m.Similarity(),
		CreatedAt:  m.CreatedAt().UTC().Format(createdAtLayout),
	}
}

// elapsed renders wall-clock time since start as whole milliseconds, e.g. "42ms".
func elapsed(start time.Time) string {
	return strconv.FormatInt(time.Since(start).Round(time.Millisecond).Milliseconds(), 10) + "ms"
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code domain.Kind, message string, meta *errorMetadata) {
	writeJSON(w, status, errorResponse{
		Success:  false,
		Error:    message,
		Code:     code,
		Metadata: meta,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code domain.Kind) errorHandler {
	return func(w http.ResponseWriter, err error, msg string, meta *errorMetadata) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg, meta)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error, meta *errorMetadata) {
	log := logger.FromContext(ctx)
	msg := domain.MessageOf(err, msgInternal)
	for _, h := range s.errorHandlers {
		if h(w, err, msg, meta) {
			log.Warn("domain error", zap.String("code", string(domain.KindOf(err))), zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusBadRequest, domain.KindInternal, msgInternal, meta)
}
