package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/peakform/coach-go/internal/embedder"
	"github.com/peakform/coach-go/internal/ingest"
	"github.com/peakform/coach-go/internal/logging"
	"github.com/peakform/coach-go/internal/rag"
	"github.com/peakform/coach-go/internal/store"
)

// NewIngestCmd constructs the `coach ingest` command, which imports a JSON
// file of fitness records into the vector-searchable context store.
func NewIngestCmd() *cobra.Command {
	var file string
	var userID string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import fitness records into the context store",
		Long: `Read a JSON array of fitness records, embed each one, and save it
to the context store for retrieval during coaching.

Each record carries a type (exercise, recipe, food, health_data, user_profile,
training_log, meal_log, goal, tip, article), an optional user_id and
source_id, and a type-specific data payload:

  [
    {"type": "exercise", "data": {"name": "Back Squat", "difficulty": "intermediate", ...}},
    {"type": "tip", "user_id": "...", "data": {"content": "..."}}
  ]

Records without a user_id inherit the --user flag value.

Examples:
  coach ingest --file exercises.json
  coach ingest --file training-logs.json --user 7f6c3a52-1f04-4f7a-9a1d-2b8a2f9c4711`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("ingest: failed to read %s: %w", file, err)
			}
			var items []ingest.Item
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("ingest: failed to parse %s: %w", file, err)
			}
			if len(items) == 0 {
				return fmt.Errorf("ingest: %s contains no records", file)
			}
			for i := range items {
				if items[i].UserID == "" {
					items[i].UserID = userID
				}
			}

			dbURL := os.Getenv("DATABASE_URL")
			if dbURL == "" {
				return fmt.Errorf("ingest: DATABASE_URL is required")
			}
			pg, err := store.Open(ctx, dbURL)
			if err != nil {
				return fmt.Errorf("ingest: failed to open store: %w", err)
			}
			defer pg.Close()

			emb, err := embedder.NewFromEnv(log)
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}

			// With the Qdrant backend selected, entries are mirrored into the
			// Qdrant collection so ranked search sees them too.
			var writer ingest.EntryWriter = pg
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
					return fmt.Errorf("ingest: failed to connect to Qdrant: %w", qdErr)
				}
				defer func() { _ = qd.Close() }()
				writer = &mirroredWriter{primary: pg, qdrant: qd}
			}

			log.Info("starting ingestion",
				slog.String("file", file),
				slog.Int("records", len(items)),
			)

			result := ingest.New(emb, writer).Run(ctx, items)

			log.Info("ingestion complete",
				slog.Int("success", result.Success),
				slog.Int("failed", result.Failed),
			)
			for _, itemErr := range result.Errors {
				log.Warn("record failed", slog.String("error", itemErr))
			}
			if result.Failed > 0 {
				return fmt.Errorf("ingest: %d of %d records failed", result.Failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file containing an array of records")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID applied to records without one")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// mirroredWriter saves each entry to the primary store and mirrors it into
// the Qdrant collection.
type mirroredWriter struct {
	primary ingest.EntryWriter
	qdrant  *rag.QdrantSearcher
}

// SaveEntry writes to the primary store first; a Qdrant mirror failure fails
// the entry so the batch report reflects it.
func (w *mirroredWriter) SaveEntry(ctx context.Context, entry *store.ContextEntry) error {
	if err := w.primary.SaveEntry(ctx, entry); err != nil {
		return err
	}
	return w.qdrant.Upsert(ctx, []store.ContextEntry{*entry})
}
