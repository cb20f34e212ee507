package embedder

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock is an adjustable time source for TTL tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(size int, ttl time.Duration) (*Cache, *fakeClock) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewCache(size, ttl, clk.Now), clk
}

func Test_Cache_HitAndMiss(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(4, time.Hour)
	if vec := c.Get("workout plan"); vec != nil {
		t.Fatalf("want miss on empty cache, got %v", vec)
	}
	c.Put("workout plan", []float32{1, 2, 3})
	if vec := c.Get("workout plan"); len(vec) != 3 {
		t.Fatalf("want hit with 3-dim vector, got %v", vec)
	}
}

func Test_Cache_KeyNormalization(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(4, time.Hour)
	c.Put("  Workout Plan  ", []float32{1})
	if vec := c.Get("workout plan"); vec == nil {
		t.Error("want hit after trim+lowercase normalization")
	}
}

func Test_Cache_TTLExpiry(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(4, 24*time.Hour)
	c.Put("stale", []float32{1})

	clk.Advance(23 * time.Hour)
	if vec := c.Get("stale"); vec == nil {
		t.Fatal("want hit before TTL")
	}

	clk.Advance(2 * time.Hour)
	if vec := c.Get("stale"); vec != nil {
		t.Fatal("want miss after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be evicted on access, len=%d", c.Len())
	}
}

func Test_Cache_LRUEviction(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(2, time.Hour)
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})

	// Touch "a" so "b" becomes the eviction candidate.
	if vec := c.Get("a"); vec == nil {
		t.Fatal("want hit for a")
	}
	c.Put("c", []float32{3})

	if vec := c.Get("b"); vec != nil {
		t.Error("want b evicted as least recently used")
	}
	if vec := c.Get("a"); vec == nil {
		t.Error("want a retained")
	}
	if vec := c.Get("c"); vec == nil {
		t.Error("want c retained")
	}
	if c.Len() != 2 {
		t.Errorf("want len 2, got %d", c.Len())
	}
}

func Test_Cache_PutRefreshesExisting(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(4, time.Hour)
	c.Put("q", []float32{1})
	clk.Advance(50 * time.Minute)
	c.Put("q", []float32{2})
	clk.Advance(30 * time.Minute)

	vec := c.Get("q")
	if vec == nil {
		t.Fatal("want hit, expiry should have been refreshed by second Put")
	}
	if vec[0] != 2 {
		t.Errorf("want updated vector, got %v", vec)
	}
}

// countingEmbedder records Embed calls and returns a canned vector or error.
type countingEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	return e.vec, e.err
}

func Test_Cached_ServesFromCacheOnRepeat(t *testing.T) {
	t.Parallel()

	inner := &countingEmbedder{vec: []float32{1, 2}}
	cached := NewCached(inner, nil)

	for i := 0; i < 3; i++ {
		vec, err := cached.Embed(context.Background(), "same question")
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		if len(vec) != 2 {
			t.Fatalf("want 2-dim vector, got %v", vec)
		}
	}
	if inner.calls != 1 {
		t.Errorf("want 1 inner call, got %d", inner.calls)
	}
}

func Test_Cached_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	inner := &countingEmbedder{err: errors.New("ollama down")}
	cached := NewCached(inner, nil)

	for i := 0; i < 2; i++ {
		if _, err := cached.Embed(context.Background(), "q"); err == nil {
			t.Fatal("want error from inner embedder")
		}
	}
	if inner.calls != 2 {
		t.Errorf("failures must not be cached, want 2 inner calls, got %d", inner.calls)
	}
}
