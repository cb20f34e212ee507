package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/peakform/coach-go/internal/history"
	"github.com/peakform/coach-go/internal/logging"
	"github.com/peakform/coach-go/internal/server"
	"github.com/peakform/coach-go/internal/tracing"
)

// NewServeCmd constructs the `coach serve` command, which starts the HTTP
// API exposing the coaching pipeline.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the coach HTTP API",
		Long: `Start the coach HTTP server on localhost.

The server exposes POST /api/coach for coached answers, liveness and
readiness probes, and Prometheus metrics.

Examples:
  coach serve
  coach serve --port 9090
  MODEL_PROVIDER=openai coach serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing. Opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			deps, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer deps.Close()

			// Open the exchange transcript store. COACH_HISTORY_DB overrides
			// the default path (~/.coach/history.db); "disabled" turns it off.
			var historyStore history.Store
			dbPath := os.Getenv("COACH_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = history.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := history.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						historyStore = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via COACH_HISTORY_DB=disabled")
			}

			srv, err := server.New(deps.Pipeline, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: buildPingers(deps),
				APIKey:  os.Getenv("COACH_API_KEY"),
				History: historyStore,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
