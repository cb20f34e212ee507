package budget

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"ab", 1},
		{"abcd", 1},
		{strings.Repeat("x", 40), 10},
	}
	for _, tc := range cases {
		if got := Estimate(tc.in); got != tc.want {
			t.Errorf("Estimate(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestEstimateMessages(t *testing.T) {
	t.Parallel()

	msgs := []*schema.Message{
		schema.SystemMessage(strings.Repeat("s", 40)),
		schema.UserMessage(strings.Repeat("u", 40)),
	}
	got := EstimateMessages(msgs)
	// 10 content tokens per message, plus role and per-message overhead.
	if got < 20 {
		t.Errorf("EstimateMessages = %d, want at least content tokens", got)
	}
}

func TestTrimParts_UnderBudgetUnchanged(t *testing.T) {
	t.Parallel()

	parts := []string{"profile", "goals", "training"}
	got := TrimParts(parts, 1000)
	if len(got) != 3 {
		t.Errorf("TrimParts trimmed under-budget parts: %v", got)
	}
}

func TestTrimParts_DropsFromEnd(t *testing.T) {
	t.Parallel()

	parts := []string{
		strings.Repeat("a", 400),
		strings.Repeat("b", 400),
		strings.Repeat("c", 400),
	}
	// 100 tokens each; budget for two.
	got := TrimParts(parts, 200)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0][0] != 'a' || got[1][0] != 'b' {
		t.Error("trimming should keep leading blocks")
	}
}

func TestTrimParts_KeepsOversizedFirstBlock(t *testing.T) {
	t.Parallel()

	parts := []string{strings.Repeat("a", 4000), strings.Repeat("b", 40)}
	got := TrimParts(parts, 10)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}
