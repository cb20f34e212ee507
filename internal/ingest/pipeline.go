package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/peakform/coach-go/internal/embedder"
	"github.com/peakform/coach-go/internal/logging"
	"github.com/peakform/coach-go/internal/store"
)

const (
	// DefaultBatchSize is how many items are grouped per batch.
	DefaultBatchSize = 10
	// DefaultParallelism bounds concurrent embed+save operations within a
	// batch, keeping pressure off the embedding endpoint.
	DefaultParallelism = 3
)

// EntryWriter persists embedded entries. Satisfied by *store.PGStore and
// adapted Qdrant sinks.
type EntryWriter interface {
	SaveEntry(ctx context.Context, entry *store.ContextEntry) error
}

// Result summarizes a batch ingestion run.
type Result struct {
	// Success is the number of items embedded and saved.
	Success int
	// Failed is the number of items that could not be processed.
	Failed int
	// Errors carries one message per failed item.
	Errors []string
}

// Pipeline embeds and persists knowledge items in bounded-concurrency
// batches.
type Pipeline struct {
	embedder    embedder.Embedder
	writer      EntryWriter
	batchSize   int
	parallelism int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithParallelism overrides DefaultParallelism.
func WithParallelism(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// New constructs a Pipeline.
func New(emb embedder.Embedder, writer EntryWriter, opts ...Option) *Pipeline {
	p := &Pipeline{
		embedder:    emb,
		writer:      writer,
		batchSize:   DefaultBatchSize,
		parallelism: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests all items. Item failures are collected, not fatal; the
// returned Result accounts for every input item. Context cancellation stops
// the run after the in-flight items finish.
func (p *Pipeline) Run(ctx context.Context, items []Item) Result {
	log := logging.FromContext(ctx)

	var mu sync.Mutex
	result := Result{}

	record := func(err error, item Item) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Type, err))
			return
		}
		result.Success++
	}

	for start := 0; start < len(items); start += p.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + p.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.parallelism)
		for _, item := range batch {
			item := item
			g.Go(func() error {
				record(p.ingestOne(gctx, item), item)
				// Item errors are recorded, not returned, so one bad item
				// never cancels the rest of the batch.
				return nil
			})
		}
		_ = g.Wait()

		log.Debug("ingest: batch complete",
			slog.Int("processed", end),
			slog.Int("total", len(items)))
	}

	return result
}

// ingestOne formats, embeds, and persists a single item.
func (p *Pipeline) ingestOne(ctx context.Context, item Item) error {
	content, err := Format(item)
	if err != nil {
		return err
	}

	vec, err := p.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	metadata := map[string]any{
		"type":     string(item.Type),
		"category": string(item.Type),
	}
	if item.SourceID != "" {
		metadata["source_id"] = item.SourceID
	}
	if tags := Tags(item); len(tags) > 0 {
		metadata["tags"] = tags
	}

	entry := &store.ContextEntry{
		ID:        uuid.NewString(),
		UserID:    item.UserID,
		Content:   content,
		Embedding: vec,
		Metadata:  metadata,
	}
	if err := p.writer.SaveEntry(ctx, entry); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
