package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// OllamaPinger probes an Ollama instance over HTTP using its model listing
// endpoint, which is free to call. It satisfies the Pinger interface and is
// used by GET /api/ready.
type OllamaPinger struct {
	// host is the Ollama base URL (e.g. http://localhost:11434).
	host string
	// client is the HTTP client used for the probe. Carries the CF-Access
	// headers when the instance sits behind a Cloudflare Access gateway.
	client *http.Client
}

// NewOllamaPinger constructs an OllamaPinger for the given base URL.
// If client is nil, http.DefaultClient is used.
func NewOllamaPinger(host string, client *http.Client) *OllamaPinger {
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaPinger{host: strings.TrimRight(host, "/"), client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *OllamaPinger) Name() string { return "ollama" }

// Ping issues GET /api/tags and treats any 2xx response as healthy.
func (p *OllamaPinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// pingable is satisfied by any dependency exposing a context-aware Ping,
// such as *store.PGStore and *rag.QdrantSearcher.
type pingable interface {
	Ping(ctx context.Context) error
}

// DependencyPinger adapts any pingable dependency to the Pinger interface
// under a fixed name.
type DependencyPinger struct {
	// dep is the dependency to probe.
	dep pingable
	// name identifies the dependency in readiness responses.
	name string
}

// NewDependencyPinger constructs a DependencyPinger for the given dependency
// and readiness label (e.g. "postgres", "qdrant").
func NewDependencyPinger(dep pingable, name string) *DependencyPinger {
	return &DependencyPinger{dep: dep, name: name}
}

// Name returns the dependency label used in readiness responses.
func (p *DependencyPinger) Name() string { return p.name }

// Ping delegates to the wrapped dependency.
func (p *DependencyPinger) Ping(ctx context.Context) error {
	return p.dep.Ping(ctx)
}
