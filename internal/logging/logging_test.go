package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestFromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	got := FromContext(ctx)
	got.Info("hello")

	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("context logger not used, buffer = %q", buf.String())
	}
}

func TestFromContext_MissingLoggerFallsBackToDefault(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) == nil {
		t.Error("FromContext must never return nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDiscard_DropsRecords(t *testing.T) {
	t.Parallel()

	// Must not panic and must accept any level.
	log := Discard()
	log.Debug("d")
	log.Error("e")
}
