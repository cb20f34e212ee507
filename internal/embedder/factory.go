package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Default embedding models per backend.
const (
	defaultOllamaModel = "qwen2:7b"
	defaultOpenAIModel = "text-embedding-3-small"
)

// knownChatOnlyPrefixes contains name fragments identifying chat/completion
// models that also expose an embedding endpoint of dubious quality. A warning
// (not an error) is emitted because some deployments run embeddings through
// a general model on purpose.
var knownChatOnlyPrefixes = []string{
	"gpt-4",
	"gpt-3.5",
	"o1",
	"o3",
	"llama3",
	"llama2",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"claude",
	"deepseek",
}

// looksLikeChatModel returns true when the model name resembles a known
// chat/completion model rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, prefix := range knownChatOnlyPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// NewFromEnv constructs a cached Embedder using cascading defaults that
// inherit from the chat provider configuration when embedding-specific
// overrides are not set.
//
// Resolution order:
//
//  1. EMBEDDING_PROVIDER, defaulting to "ollama" if unset
//  2. EMBEDDING_MODEL overrides the default model for the resolved backend
//  3. EMBEDDING_ENDPOINT overrides the inherited endpoint (Ollama: OLLAMA_HOST)
//  4. EMBEDDING_API_KEY overrides the inherited API key (OpenAI: OPENAI_API_KEY)
//
// CF_ACCESS_CLIENT_ID / CF_ACCESS_CLIENT_SECRET are attached for the Ollama
// backend when set, matching the chat provider's tunnel configuration.
func NewFromEnv(log *slog.Logger) (Embedder, error) {
	backend := os.Getenv("EMBEDDING_PROVIDER")
	if backend == "" {
		backend = "ollama"
	}

	model := os.Getenv("EMBEDDING_MODEL")

	var inner Embedder
	switch backend {
	case "ollama":
		if model == "" {
			model = defaultOllamaModel
		}
		host := os.Getenv("EMBEDDING_ENDPOINT")
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		inner = NewOllamaEmbedder(&OllamaConfig{
			Host:               host,
			Model:              model,
			AccessClientID:     os.Getenv("CF_ACCESS_CLIENT_ID"),
			AccessClientSecret: os.Getenv("CF_ACCESS_CLIENT_SECRET"),
		})

	case "openai":
		if model == "" {
			model = defaultOpenAIModel
		}
		apiKey := os.Getenv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: no OpenAI API key found; set OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		inner = NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL: os.Getenv("EMBEDDING_ENDPOINT"),
			APIKey:  apiKey,
			Model:   model,
		})

	default:
		return nil, fmt.Errorf("embedder: unknown EMBEDDING_PROVIDER %q, valid values: ollama, openai", backend)
	}

	if looksLikeChatModel(model) {
		log.Warn("embedder: EMBEDDING_MODEL looks like a chat model, not a dedicated embedding model",
			slog.String("model", model),
			slog.String("hint", "retrieval quality may suffer; consider nomic-embed-text or text-embedding-3-small"),
		)
	}

	return NewCached(inner, nil), nil
}
