package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/peakform/coach-go/internal/agent"
	"github.com/peakform/coach-go/internal/history"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// History receives completed question/answer exchanges. Persistence
	// failures are logged and never affect the response. May be nil.
	History history.Store
	// Registry is the Prometheus registry to register server metrics against.
	// If nil, a fresh private registry is created. Tests always inject one.
	Registry *prometheus.Registry
}

// asker is the interface handleCoach calls to run the coaching pipeline.
// *agent.Pipeline satisfies it; tests inject a fake.
type asker interface {
	// AskCoach runs the full reasoning, context, and output pipeline for the
	// given question. A non-nil *agent.CoachError means the pipeline failed.
	AskCoach(ctx context.Context, question, userID string) (*agent.CoachResult, *agent.CoachError)
}

// Server is the HTTP server that wraps the coaching pipeline.
type Server struct {
	// asker runs the coaching pipeline; set to *agent.Pipeline in production,
	// overridden by a fake in tests.
	asker asker
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// coachRequest is the JSON body for POST /api/coach.
type coachRequest struct {
	// Question is the user's natural language question (minimum 5 characters).
	Question string `json:"question"`
	// UserID is the UUID of the user whose context informs the answer.
	UserID string `json:"user_id"`
}

// coachSuccessResponse is the envelope returned when the pipeline produced a
// fully valid coach result.
type coachSuccessResponse struct {
	Success bool               `json:"success"`
	Data    *agent.CoachResult `json:"data"`
}

// coachErrorResponse is the envelope returned for request failures and for
// results that fail schema validation. Raw carries the unvalidated result so
// callers can still inspect what the model produced.
type coachErrorResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Details string             `json:"details,omitempty"`
	Raw     *agent.CoachResult `json:"raw,omitempty"`
}
