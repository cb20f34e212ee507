// Package embedder provides clients for converting text into dense vector
// embeddings. Each implementation talks to a backend (Ollama, OpenAI) via
// plain HTTP; no additional SDK dependencies are required.
//
// Transient network failures are retried with bounded exponential backoff;
// anything else, including a malformed or empty vector in the response,
// surfaces as an embedding error from the errs taxonomy.
package embedder

import (
	"context"
)

// Embedder converts a single text into its dense vector embedding.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed returns the embedding vector for text. The vector dimension is a
	// run-time property of the configured model, not statically known.
	Embed(ctx context.Context, text string) ([]float32, error)
}
