// Package rag implements context retrieval for the coaching pipeline. The
// retriever degrades through ranked similarity search, client-side vector
// ranking, and recency before giving up, so a partial backend outage still
// produces a usable answer.
package rag

import (
	"context"
	"strings"

	"github.com/peakform/coach-go/internal/store"
)

// Method identifies which retrieval tier produced a result.
type Method string

const (
	// MethodRanked means the database- or Qdrant-side ranked search served
	// the result.
	MethodRanked Method = "ranked"
	// MethodClientRanked means entries were ranked client-side by cosine
	// similarity.
	MethodClientRanked Method = "client_ranked"
	// MethodRecency means no vector search was possible and the newest
	// entries were returned instead.
	MethodRecency Method = "recency"
	// MethodNone means no context could be retrieved at all.
	MethodNone Method = "none"
)

// NoContextSentinel is the text returned when retrieval produces nothing.
// Downstream prompts rely on this exact phrase.
const NoContextSentinel = "No relevant context found."

// Result is the outcome of a retrieval attempt.
type Result struct {
	// Contents are the retrieved context snippets, most relevant first.
	Contents []string
	// Method is the tier that produced the snippets.
	Method Method
}

// Text joins the retrieved snippets for prompt injection, or returns the
// sentinel when nothing was found.
func (r Result) Text() string {
	if len(r.Contents) == 0 {
		return NoContextSentinel
	}
	return strings.Join(r.Contents, "\n")
}

// RankedSearcher performs server-side ranked similarity search. Satisfied by
// *store.PGStore and *QdrantSearcher.
type RankedSearcher interface {
	MatchContext(ctx context.Context, userID string, embedding []float32, threshold float64, count int) ([]store.ContextMatch, error)
}

// EntrySource serves raw knowledge-base entries for the client-side ranking
// and recency tiers. Satisfied by *store.PGStore.
type EntrySource interface {
	EntriesWithEmbeddings(ctx context.Context, userID string, limit int) ([]store.ContextEntry, error)
	RecentEntries(ctx context.Context, userID string, limit int) ([]store.ContextEntry, error)
}
