package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaPinger_Healthy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	p := NewOllamaPinger(srv.URL, nil)
	if err := p.Ping(t.Context()); err != nil {
		t.Errorf("expected healthy ping, got %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("unexpected name %q", p.Name())
	}
}

func TestOllamaPinger_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p := NewOllamaPinger(srv.URL, nil)
	if err := p.Ping(t.Context()); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestOllamaPinger_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(okHandler)
	srv.Close()

	p := NewOllamaPinger(srv.URL, nil)
	if err := p.Ping(t.Context()); err == nil {
		t.Error("expected error for closed server")
	}
}

// pingFunc adapts a function to the pingable interface.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestDependencyPinger(t *testing.T) {
	t.Parallel()

	healthy := NewDependencyPinger(pingFunc(func(context.Context) error { return nil }), "postgres")
	if healthy.Name() != "postgres" {
		t.Errorf("unexpected name %q", healthy.Name())
	}
	if err := healthy.Ping(t.Context()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	down := NewDependencyPinger(pingFunc(func(context.Context) error {
		return errors.New("pool closed")
	}), "postgres")
	if err := down.Ping(t.Context()); err == nil {
		t.Error("expected error from failing dependency")
	}
}
