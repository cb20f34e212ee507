package errs

import (
	"context"
	"errors"
	"testing"
	"time"
)

// noSleep replaces the backoff wait so tests run instantly.
func noSleep(_ context.Context, _ time.Duration) error { return nil }

func Test_WithRetry_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithRetry(context.Background(), RetryConfig{Sleep: noSleep}, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("want 1 call, got %d", calls)
	}
}

func Test_WithRetry_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithRetry(context.Background(), RetryConfig{Sleep: noSleep}, func() error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("want 3 calls, got %d", calls)
	}
}

func Test_WithRetry_PermanentErrorFailsFast(t *testing.T) {
	t.Parallel()

	calls := 0
	permanent := errors.New("invalid model name")
	err := WithRetry(context.Background(), RetryConfig{Sleep: noSleep}, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("want permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent error must not be retried, got %d calls", calls)
	}
}

func Test_WithRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	transient := errors.New("i/o timeout")
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 3, Sleep: noSleep}, func() error {
		calls++
		return transient
	})
	if !errors.Is(err, transient) {
		t.Fatalf("want transient error after exhaustion, got %v", err)
	}
	if calls != 3 {
		t.Errorf("want 3 calls, got %d", calls)
	}
}

func Test_WithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, RetryConfig{Delay: time.Hour}, func() error {
		return errors.New("no such host")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func Test_CodeOf_TaxonomyAndUnknown(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"embedding", NewEmbedding("embed failed", errors.New("boom")), CodeEmbedding},
		{"chat", NewChat("no content", nil), CodeChat},
		{"database", NewDatabase("query failed", errors.New("down")), CodeDatabase},
		{"auth", NewAuth(""), CodeAuth},
		{"validation", NewValidation("bad input"), CodeValidation},
		{"unknown", errors.New("plain"), CodeUnknown},
	}
	for _, tc := range cases {
		if got := CodeOf(tc.err); got != tc.want {
			t.Errorf("%s: CodeOf = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func Test_StatusOf_WrappedError(t *testing.T) {
	t.Parallel()

	wrapped := NewDatabase("query failed", errors.New("down"))
	if got := StatusOf(wrapped); got != 500 {
		t.Errorf("StatusOf = %d, want 500", got)
	}
	if got := StatusOf(errors.New("plain")); got != 500 {
		t.Errorf("StatusOf plain = %d, want 500", got)
	}
	if got := StatusOf(NewAuth("")); got != 401 {
		t.Errorf("StatusOf auth = %d, want 401", got)
	}
}
