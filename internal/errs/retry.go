package errs

import (
	"context"
	"strings"
	"time"
)

// RetryConfig controls the bounded exponential-backoff retry applied to
// transient I/O failures (embedding, chat, store).
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is the wait before the second attempt; subsequent waits grow
	// by Multiplier.
	Delay time.Duration
	// Multiplier is the backoff growth factor per attempt.
	Multiplier float64
	// RetryableSubstrings lists error-message fragments that mark a failure
	// as transient. Anything else fails immediately.
	RetryableSubstrings []string
	// Sleep is the wait function, overridable in tests. Defaults to a
	// context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetry is the retry policy shared by the embedding and chat clients:
// three attempts, 1s initial delay doubling each time, retrying only on the
// named transient network failures.
var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	Delay:       time.Second,
	Multiplier:  2,
	RetryableSubstrings: []string{
		"connection refused",
		"timeout",
		"no such host",
		"fetch failed",
	},
}

// WithRetry runs fn with the given retry policy. It returns the first
// permanent error, the last error after MaxAttempts, or nil on success.
// Context cancellation aborts the wait between attempts.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultRetry.Delay
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = DefaultRetry.Multiplier
	}
	if cfg.RetryableSubstrings == nil {
		cfg.RetryableSubstrings = DefaultRetry.RetryableSubstrings
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	delay := cfg.Delay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr, cfg.RetryableSubstrings) || attempt == cfg.MaxAttempts {
			return lastErr
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
	}
	return lastErr
}

// isRetryable reports whether err's message contains any transient fragment.
func isRetryable(err error, substrings []string) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range substrings {
		if strings.Contains(msg, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
