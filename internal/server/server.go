// Package server implements the HTTP server that exposes the coaching
// pipeline via a small REST API. The server is started by the `coach serve`
// CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peakform/coach-go/internal/agent"
	"github.com/peakform/coach-go/internal/history"
	"github.com/peakform/coach-go/internal/logging"
)

// errorInvalidOutput is the error code returned when the pipeline succeeded
// but its result failed response validation.
const errorInvalidOutput = "INVALID_OUTPUT"

// minQuestionLen is the minimum accepted question length in bytes.
const minQuestionLen = 5

// New constructs a Server from the provided pipeline and config.
func New(pipeline *agent.Pipeline, cfg *Config) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("server: pipeline must not be nil")
	}
	return newWithAsker(pipeline, cfg)
}

// newWithAsker is the test seam behind New: it accepts any asker so handler
// tests can inject a fake pipeline.
func newWithAsker(a asker, cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// The pipeline makes two sequential LLM calls; keep this generous.
		cfg.WriteTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}

	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		asker:   a,
		cfg:     cfg,
		log:     cfg.Logger,
		pingers: cfg.Pingers,
		metrics: newServerMetrics(cfg.Registry),
	}

	if cfg.APIKey == "" {
		s.log.Warn("server: COACH_API_KEY not set, API authentication disabled")
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	s.stopRL = stopRL

	// Middleware order, outermost first: request logging, auth, rate limit,
	// metrics. Health and metrics endpoints skip auth and rate limiting so
	// probes and scrapers work without credentials.
	protected := func(h http.Handler) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(s.httpMetrics(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/coach", protected(http.HandlerFunc(s.handleCoach)))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("coach server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleCoach handles POST /api/coach. Request validation failures and
// pipeline failures share the REQUEST_ERROR envelope with a 400 status;
// results that fail response validation return 200 with INVALID_OUTPUT and
// the raw result attached.
func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	var req coachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.coachOutcome("error", start)
		writeJSON(w, http.StatusBadRequest, coachErrorResponse{
			Error:   agent.ErrorRequestFailed,
			Details: "invalid request body",
		})
		return
	}
	if details, ok := validateCoachRequest(&req); !ok {
		s.coachOutcome("error", start)
		writeJSON(w, http.StatusBadRequest, coachErrorResponse{
			Error:   agent.ErrorRequestFailed,
			Details: details,
		})
		return
	}

	result, coachErr := s.asker.AskCoach(r.Context(), req.Question, req.UserID)
	if coachErr != nil {
		s.coachOutcome("error", start)
		writeJSON(w, http.StatusBadRequest, coachErrorResponse{
			Error:   coachErr.Error,
			Details: coachErr.Details,
		})
		return
	}

	if err := agent.ValidateResult(result); err != nil {
		log.Warn("coach result failed validation", slog.Any("error", err))
		s.coachOutcome("invalid_output", start)
		writeJSON(w, http.StatusOK, coachErrorResponse{
			Error: errorInvalidOutput,
			Raw:   result,
		})
		return
	}

	s.recordExchange(r.Context(), &req, result)
	s.coachOutcome("ok", start)
	writeJSON(w, http.StatusOK, coachSuccessResponse{Success: true, Data: result})
}

// validateCoachRequest checks the request fields. Returns a human-readable
// reason and false when the request is invalid.
func validateCoachRequest(req *coachRequest) (string, bool) {
	if len(req.Question) < minQuestionLen {
		return fmt.Sprintf("question must be at least %d characters", minQuestionLen), false
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return "user_id must be a valid UUID", false
	}
	return "", true
}

// recordExchange appends the completed exchange to the history store.
// History failures are logged and never affect the response.
func (s *Server) recordExchange(ctx context.Context, req *coachRequest, result *agent.CoachResult) {
	if s.cfg.History == nil {
		return
	}
	ex := history.Exchange{
		UserID:   req.UserID,
		Question: req.Question,
		Answer:   result.Message,
		Intent:   string(result.Intent),
	}
	if ex.Answer == "" {
		ex.Answer = result.Summary
	}
	if err := s.cfg.History.Append(ctx, ex); err != nil {
		logging.FromContext(ctx).Warn("failed to record exchange", slog.Any("error", err))
	}
}

// coachOutcome records the counter and duration metrics for one completed
// /api/coach request.
func (s *Server) coachOutcome(outcome string, start time.Time) {
	s.metrics.coachRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.coachDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encode error", slog.Any("error", err))
	}
}
