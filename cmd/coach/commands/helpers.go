package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/peakform/coach-go/internal/agent"
	"github.com/peakform/coach-go/internal/chat"
	"github.com/peakform/coach-go/internal/embedder"
	"github.com/peakform/coach-go/internal/provider"
	"github.com/peakform/coach-go/internal/rag"
	"github.com/peakform/coach-go/internal/server"
	"github.com/peakform/coach-go/internal/store"
)

// defaultEmbeddingDims is the vector dimensionality assumed for the Qdrant
// collection when EMBEDDING_DIMENSIONS is not set. Matches nomic-embed-text.
const defaultEmbeddingDims = 768

// coachDeps bundles the wired dependencies shared by the ask and serve
// commands. Close releases every opened connection.
type coachDeps struct {
	// Pipeline is the fully wired three-stage coaching pipeline.
	Pipeline *agent.Pipeline
	// Store is the Postgres user and context store.
	Store *store.PGStore
	// Qdrant is the Qdrant searcher when RETRIEVAL_BACKEND=qdrant, else nil.
	Qdrant *rag.QdrantSearcher
	// closers are run in order by Close.
	closers []func()
}

// Close releases all connections held by the dependency bundle.
func (d *coachDeps) Close() {
	for _, c := range d.closers {
		c()
	}
}

// buildDeps wires the embedder, stores, retriever, chat client, and the
// three agents from environment configuration.
func buildDeps(ctx context.Context, log *slog.Logger) (*coachDeps, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pg, err := store.Open(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	deps := &coachDeps{Store: pg}
	deps.closers = append(deps.closers, pg.Close)

	emb, err := embedder.NewFromEnv(log)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	// Ranked search defaults to the Postgres match function; a Qdrant
	// backend is selected via RETRIEVAL_BACKEND=qdrant. A Qdrant connection
	// failure is non-fatal: the retriever degrades to client-side ranking.
	var ranked rag.RankedSearcher = pg
	if getEnvOrDefault("RETRIEVAL_BACKEND", "postgres") == "qdrant" {
		qd, qdErr := rag.NewQdrantSearcher(ctx, &rag.QdrantConfig{
			Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
			Port:       getEnvInt("QDRANT_PORT", 6334),
			Collection: getEnvOrDefault("QDRANT_COLLECTION", "fitness_context"),
			VectorSize: uint64(getEnvInt("EMBEDDING_DIMENSIONS", defaultEmbeddingDims)),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if qdErr != nil {
			log.Warn("qdrant unavailable, falling back to client-side ranking", slog.Any("error", qdErr))
			ranked = nil
		} else {
			ranked = qd
			deps.Qdrant = qd
			deps.closers = append(deps.closers, func() { _ = qd.Close() })
		}
	}

	retriever, err := rag.New(&rag.Config{
		Embedder: emb,
		Ranked:   ranked,
		Entries:  pg,
	})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to build retriever: %w", err)
	}

	chatModel, err := provider.NewFromEnv(ctx)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}
	client := chat.New(chatModel)

	deps.Pipeline = agent.NewPipeline(
		agent.NewReasoner(client),
		agent.NewContextAgent(pg, retriever),
		agent.NewOutputAgent(client),
	)
	return deps, nil
}

// buildPingers assembles the readiness probes for the serve command from the
// wired dependencies.
func buildPingers(deps *coachDeps) []server.Pinger {
	httpClient := provider.AccessHTTPClient(
		os.Getenv("CF_ACCESS_CLIENT_ID"),
		os.Getenv("CF_ACCESS_CLIENT_SECRET"),
		10*time.Second,
	)

	pingers := []server.Pinger{
		server.NewOllamaPinger(getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"), httpClient),
		server.NewDependencyPinger(deps.Store, "postgres"),
	}
	if deps.Qdrant != nil {
		pingers = append(pingers, server.NewDependencyPinger(deps.Qdrant, "qdrant"))
	}
	return pingers
}

// getEnvOrDefault returns the env var value, or fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as int, or fallback when unset or
// unparseable.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
