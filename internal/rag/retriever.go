package rag

import (
	"context"
	"errors"
	"log/slog"

	"github.com/peakform/coach-go/internal/embedder"
	"github.com/peakform/coach-go/internal/logging"
	"github.com/peakform/coach-go/internal/similarity"
	"github.com/peakform/coach-go/internal/store"
)

const (
	// DefaultThreshold is the minimum similarity for ranked-search results.
	DefaultThreshold = 0.5
	// DefaultTopK is the number of context snippets returned per query.
	DefaultTopK = 5
)

// Retriever fetches the most relevant context snippets for a user's query.
// Tiers are tried in order: ranked search, client-side cosine ranking over
// stored embeddings, recency. Retrieval never fails outright; when every
// tier is exhausted the result carries MethodNone and an empty content list.
type Retriever struct {
	embedder  embedder.Embedder
	ranked    RankedSearcher
	entries   EntrySource
	threshold float64
	topK      int
}

// Config holds the dependencies for a Retriever.
type Config struct {
	// Embedder converts queries to vectors. Required.
	Embedder embedder.Embedder
	// Ranked is the server-side ranked search. Optional; when nil the
	// retriever starts at the client-side ranking tier.
	Ranked RankedSearcher
	// Entries serves stored entries for the fallback tiers. Required.
	Entries EntrySource
	// Threshold overrides DefaultThreshold when positive.
	Threshold float64
	// TopK overrides DefaultTopK when positive.
	TopK int
}

// New constructs a Retriever.
func New(cfg *Config) (*Retriever, error) {
	if cfg.Embedder == nil {
		return nil, errors.New("rag: embedder must not be nil")
	}
	if cfg.Entries == nil {
		return nil, errors.New("rag: entry source must not be nil")
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder:  cfg.Embedder,
		ranked:    cfg.Ranked,
		entries:   cfg.Entries,
		threshold: threshold,
		topK:      topK,
	}, nil
}

// Retrieve returns the most relevant context snippets for the query. Failed
// tiers are logged and the next tier is tried; the returned Method records
// which one served the result.
func (r *Retriever) Retrieve(ctx context.Context, userID, query string) Result {
	log := logging.FromContext(ctx)

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Warn("retrieval: query embedding failed, falling back to recency",
			slog.Any("error", err))
		return r.retrieveRecent(ctx, userID)
	}

	if r.ranked != nil {
		matches, err := r.ranked.MatchContext(ctx, userID, vec, r.threshold, r.topK)
		switch {
		case errors.Is(err, store.ErrMatchUnavailable):
			// Expected on deployments without the search function.
		case err != nil:
			log.Warn("retrieval: ranked search failed, ranking client-side",
				slog.Any("error", err))
		default:
			if len(matches) > 0 {
				contents := make([]string, 0, len(matches))
				for _, m := range matches {
					contents = append(contents, m.Content)
				}
				return Result{Contents: contents, Method: MethodRanked}
			}
		}
	}

	if result, ok := r.rankClientSide(ctx, userID, vec); ok {
		return result
	}
	return r.retrieveRecent(ctx, userID)
}

// rankClientSide loads stored embeddings and ranks them by cosine similarity
// against the query vector. Returns ok=false when no rankable entries exist.
func (r *Retriever) rankClientSide(ctx context.Context, userID string, vec []float32) (Result, bool) {
	log := logging.FromContext(ctx)

	entries, err := r.entries.EntriesWithEmbeddings(ctx, userID, store.DefaultEntryLimit)
	if err != nil {
		log.Warn("retrieval: could not load embedded entries",
			slog.Any("error", err))
		return Result{}, false
	}
	if len(entries) == 0 {
		return Result{}, false
	}

	candidates := make([]similarity.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, similarity.Candidate{
			Vector:  e.Embedding,
			Content: e.Content,
		})
	}
	matches, err := similarity.TopSimilar(vec, candidates, r.topK)
	if err != nil {
		log.Warn("retrieval: client-side ranking failed",
			slog.Any("error", err))
		return Result{}, false
	}

	// No threshold here: the client-side tier keeps the best k matches even
	// when similarity is low. Only the ranked search applies the threshold.
	contents := make([]string, 0, len(matches))
	for _, m := range matches {
		contents = append(contents, m.Content)
	}
	if len(contents) == 0 {
		return Result{}, false
	}
	return Result{Contents: contents, Method: MethodClientRanked}, true
}

// retrieveRecent is the last resort: the newest entries regardless of
// relevance.
func (r *Retriever) retrieveRecent(ctx context.Context, userID string) Result {
	log := logging.FromContext(ctx)

	entries, err := r.entries.RecentEntries(ctx, userID, r.topK)
	if err != nil {
		log.Warn("retrieval: recency fallback failed",
			slog.Any("error", err))
		return Result{Method: MethodNone}
	}
	if len(entries) == 0 {
		return Result{Method: MethodNone}
	}
	contents := make([]string, 0, len(entries))
	for _, e := range entries {
		contents = append(contents, e.Content)
	}
	return Result{Contents: contents, Method: MethodRecency}
}
