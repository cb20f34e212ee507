package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/peakform/coach-go/internal/errs"
)

// OllamaEmbedder implements Embedder using the Ollama /api/embeddings
// endpoint. It is safe for concurrent use. When the instance sits behind a
// Cloudflare Access gateway the service-token headers are attached to every
// request.
type OllamaEmbedder struct {
	// host is the Ollama server base URL (e.g. "http://localhost:11434").
	host string
	// model is the embedding model name (e.g. "qwen2:7b").
	model string
	// accessClientID is the optional CF-Access-Client-Id header value.
	accessClientID string
	// accessClientSecret is the optional CF-Access-Client-Secret header value.
	accessClientSecret string
	// retry is the transient-failure retry policy.
	retry errs.RetryConfig
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// OllamaConfig holds the settings for constructing an OllamaEmbedder.
type OllamaConfig struct {
	// Host is the Ollama server base URL (e.g. "http://localhost:11434").
	Host string
	// Model is the embedding model name (e.g. "qwen2:7b").
	Model string
	// AccessClientID is the optional CF-Access-Client-Id header value.
	AccessClientID string
	// AccessClientSecret is the optional CF-Access-Client-Secret header value.
	AccessClientSecret string
	// Retry overrides the default transient-failure retry policy.
	Retry *errs.RetryConfig
}

// NewOllamaEmbedder constructs an OllamaEmbedder from the given config.
func NewOllamaEmbedder(cfg *OllamaConfig) *OllamaEmbedder {
	retry := errs.DefaultRetry
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	return &OllamaEmbedder{
		host:               cfg.Host,
		model:              cfg.Model,
		accessClientID:     cfg.AccessClientID,
		accessClientSecret: cfg.AccessClientSecret,
		retry:              retry,
		client:             &http.Client{Timeout: 60 * time.Second},
	}
}

// ollamaEmbedRequest is the JSON body sent to the Ollama /api/embeddings endpoint.
type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaEmbedResponse is the JSON body returned from the Ollama /api/embeddings
// endpoint. Depending on the Ollama version the vector arrives under the
// singular "embedding" key or as the first element of the plural "embeddings"
// key. Both shapes are accepted.
type ollamaEmbedResponse struct {
	Embedding  []float32   `json:"embedding,omitempty"`
	Embeddings [][]float32 `json:"embeddings,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// vector returns the embedding regardless of which response shape was used.
func (r *ollamaEmbedResponse) vector() []float32 {
	if len(r.Embedding) > 0 {
		return r.Embedding
	}
	if len(r.Embeddings) > 0 {
		return r.Embeddings[0]
	}
	return nil
}

// Embed returns the embedding vector for text, retrying transient network
// failures. A non-empty numeric vector is required; anything else is an
// embedding error carrying the underlying cause.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := errs.WithRetry(ctx, e.retry, func() error {
		v, err := e.embedOnce(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, errs.NewEmbedding("ollama embedding request failed", err)
	}
	return vec, nil
}

// embedOnce performs a single embedding request.
func (e *OllamaEmbedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	body := ollamaEmbedRequest{
		Model:  e.model,
		Prompt: text,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: marshal request: %w", err)
	}

	url := e.host + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.accessClientID != "" && e.accessClientSecret != "" {
		req.Header.Set("CF-Access-Client-Id", e.accessClientID)
		req.Header.Set("CF-Access-Client-Secret", e.accessClientSecret)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embedder: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != "" {
			msg = result.Error
		}
		return nil, fmt.Errorf("ollama embedder: %s", msg)
	}

	vec := result.vector()
	if len(vec) == 0 {
		return nil, fmt.Errorf("ollama embedder: response carried no embedding vector")
	}

	return vec, nil
}
