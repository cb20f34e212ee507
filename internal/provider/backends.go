package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	einoark "github.com/cloudwego/eino-ext/components/model/ark"
	einogemini "github.com/cloudwego/eino-ext/components/model/gemini"
	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// accessHeaderTransport injects Cloudflare Access service-token headers into
// every outgoing request. Used when the Ollama instance is reachable only
// through a Zero-Trust tunnel.
type accessHeaderTransport struct {
	// clientID is the CF-Access-Client-Id header value.
	clientID string
	// clientSecret is the CF-Access-Client-Secret header value.
	clientSecret string
	// base is the wrapped RoundTripper.
	base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *accessHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("CF-Access-Client-Id", t.clientID)
	clone.Header.Set("CF-Access-Client-Secret", t.clientSecret)
	return t.base.RoundTrip(clone) //nolint:wrapcheck // transport passthrough
}

// AccessHTTPClient returns an *http.Client that attaches the CF-Access
// service-token headers when both credentials are set, or a plain client
// with the same timeout otherwise.
func AccessHTTPClient(clientID, clientSecret string, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if clientID != "" && clientSecret != "" {
		client.Transport = &accessHeaderTransport{
			clientID:     clientID,
			clientSecret: clientSecret,
			base:         http.DefaultTransport,
		}
	}
	return client
}

// newOllama constructs a ChatModel backed by an Ollama instance.
// When CF-Access credentials are configured the HTTP client attaches them
// to every request so tunneled deployments work transparently.
func newOllama(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	host := cfg.Ollama.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	v, err := einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		BaseURL:    host,
		Model:      cfg.Ollama.Model,
		HTTPClient: AccessHTTPClient(cfg.Ollama.AccessClientID, cfg.Ollama.AccessClientSecret, 120*time.Second),
	})
	return v, err
}

// newOpenAI constructs a ChatModel backed by the OpenAI API.
func newOpenAI(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	v, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		Model:       cfg.OpenAI.Model,
		APIKey:      cfg.OpenAI.APIKey,
		MaxTokens:   &cfg.Tuning.MaxTokens,
		Temperature: &cfg.Tuning.Temperature,
	})
	return v, err
}

// newAzure constructs a ChatModel backed by Azure OpenAI Service.
func newAzure(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	return einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		Model:       cfg.AzureOpenAI.Deployment,
		APIKey:      cfg.AzureOpenAI.APIKey,
		BaseURL:     cfg.AzureOpenAI.Endpoint,
		ByAzure:     true,
		APIVersion:  cfg.AzureOpenAI.APIVersion,
		MaxTokens:   &cfg.Tuning.MaxTokens,
		Temperature: &cfg.Tuning.Temperature,
		// Use the deployment name as-is; the default mapper strips dots/colons
		// which breaks deployment names like "gpt-4.1".
		AzureModelMapperFunc: func(model string) string { return model },
	})
}

// newBedrock constructs a ChatModel backed by AWS Bedrock via the ark
// provider configured with the Bedrock-compatible endpoint.
func newBedrock(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	maxTokens := cfg.Tuning.MaxTokens
	temp := cfg.Tuning.Temperature
	return einoark.NewChatModel(ctx, &einoark.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		Model:       cfg.Bedrock.ModelID,
		MaxTokens:   &maxTokens,
		Temperature: &temp,
	})
}

// newGemini constructs a ChatModel backed by Google Gemini (AI Studio).
func newGemini(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create Gemini client: %w", err)
	}
	return einogemini.NewChatModel(ctx, &einogemini.Config{ //nolint:wrapcheck // constructor passthrough
		Client: client,
		Model:  cfg.Gemini.Model,
	})
}
