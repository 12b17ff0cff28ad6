// Package server exposes the sequencer over HTTP.
//
// Routes:
//   - POST /api/sequence  sequence a batch of line items or a free-text scope
//   - GET  /api/rules     the phase rule table
//   - GET  /healthz       liveness
//   - GET  /metrics       Prometheus exposition
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/metrics"
	"github.com/alexanderramin/buildseq/internal/sequencer"
	"github.com/alexanderramin/buildseq/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxBodyBytes caps a sequence request body.
const DefaultMaxBodyBytes = 1 << 20

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080").
	Address string

	// ShutdownTimeout is the maximum time to wait for connections to drain.
	// Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxBodyBytes limits the request body of POST /api/sequence.
	MaxBodyBytes int64
}

func (c Config) withDefaults() Config {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	// Free-text requests wait on the LLM, which can take a while.
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 90 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// Server serves the sequencing API.
type Server struct {
	httpServer      *http.Server
	sequences       service.SequenceService
	metrics         *metrics.Metrics
	logger          *slog.Logger
	maxBodyBytes    int64
	shutdownTimeout time.Duration
	inShutdown      atomic.Bool
}

// NewServer wires the routes. m and gatherer may be nil, in which case
// requests are not counted and /metrics is not registered.
func NewServer(
	sequences service.SequenceService,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
	cfg Config,
) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		sequences:       sequences,
		metrics:         m,
		logger:          logger,
		maxBodyBytes:    cfg.MaxBodyBytes,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sequence", s.counted("/api/sequence", s.handleSequence))
	mux.HandleFunc("GET /api/rules", s.counted("/api/rules", s.handleRules))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if gatherer != nil {
		mux.Handle("GET /metrics", metrics.HandlerFor(gatherer))
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks until the server stops. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones, up to
// the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown reports whether Shutdown has been called.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// handleSequence handles POST /api/sequence.
//
// Returns:
//   - 200 with the sequencing result
//   - 400 for malformed JSON, empty or invalid input
//   - 413 when the body or free-text description is too large
//   - 422 when the dependencies form a cycle
//   - 429 when rate limited
//   - 502 when free-text classification failed
func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) int {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req app.SequenceRequest
	err := dec.Decode(&req)
	if err == nil {
		// The body must hold exactly one JSON value.
		if extra := dec.Decode(&struct{}{}); extra != io.EOF {
			err = extra
			if err == nil {
				err = errors.New("unexpected data after JSON object")
			}
		}
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return s.writeError(w, &app.SequenceError{
				Code:    app.SequenceErrDescriptionTooLong,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit),
			})
		}
		return s.writeError(w, &app.SequenceError{
			Code:    app.SequenceErrInvalidInput,
			Message: "malformed JSON: " + err.Error(),
		})
	}

	resp, err := s.sequences.Sequence(r.Context(), req)
	if err != nil {
		return s.writeError(w, err)
	}
	return s.writeJSON(w, http.StatusOK, resp)
}

// RuleView is the wire form of one phase rule.
type RuleView struct {
	Phase                string         `json:"phase"`
	Label                string         `json:"label"`
	Trade                string         `json:"trade"`
	Keywords             []string       `json:"keywords"`
	BaseDurationDays     float64        `json:"base_duration_days"`
	ScalesWithArea       bool           `json:"scales_with_area"`
	RequiredPredecessors []domain.Phase `json:"required_predecessors"`
	MustPrecede          []domain.Phase `json:"must_precede"`
	InspectionRequired   bool           `json:"inspection_required"`
	InspectionType       string         `json:"inspection_type,omitempty"`
	PermitRequired       bool           `json:"permit_required"`
}

// RuleViews converts a rule table to its wire form.
func RuleViews(table *sequencer.RuleTable) []RuleView {
	rules := table.Rules()
	out := make([]RuleView, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleView{
			Phase:                string(r.Phase),
			Label:                r.Phase.Label(),
			Trade:                r.Trade,
			Keywords:             nonNil(r.Keywords),
			BaseDurationDays:     r.BaseDurationDays,
			ScalesWithArea:       r.ScalesWithArea,
			RequiredPredecessors: nonNil(r.RequiredPredecessors),
			MustPrecede:          nonNil(r.MustPrecede),
			InspectionRequired:   r.InspectionRequired,
			InspectionType:       r.InspectionType,
			PermitRequired:       sequencer.PermitGated(r.Phase),
		})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// handleRules handles GET /api/rules.
func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) int {
	return s.writeJSON(w, http.StatusOK, map[string]any{
		"rules": RuleViews(s.sequences.Rules()),
	})
}

// handleHealth handles GET /healthz. It returns 503 once shutdown starts.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.IsShuttingDown() {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// counted records the status each route returns.
func (s *Server) counted(route string, h func(http.ResponseWriter, *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h(w, r)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, status)
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) int {
	body := ErrorBody{
		Code:    string(app.SequenceErrInternal),
		Message: "internal error",
	}
	status := http.StatusInternalServerError

	var seqErr *app.SequenceError
	if errors.As(err, &seqErr) {
		body = ErrorBody{
			Code:      string(seqErr.Code),
			Message:   seqErr.Message,
			Retryable: seqErr.Retryable(),
		}
		status = seqErr.Code.HTTPStatus()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("sequence request failed", "code", body.Code, "error", err)
	}
	if seqErr != nil && seqErr.Code == app.SequenceErrRateLimited {
		w.Header().Set("Retry-After", "1")
	}
	return s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
	return status
}
