// Package budget provides token budget estimation and prompt trimming for
// the coaching pipeline. Because the pipeline supports multiple LLM backends
// with different tokenizers, this package uses a conservative
// character-based heuristic: 1 token ≈ 4 characters (English prose). This
// deliberately under-estimates token counts to leave headroom for
// model-specific overhead.
package budget

import (
	"github.com/cloudwego/eino/schema"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default budget for the user-context
	// block injected into the output prompt. Conservative enough to fit
	// within 8k-context models while leaving room for the question, the
	// system prompt, and the response.
	DefaultMaxContextTokens = 4000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimParts drops context blocks from the end of parts until the total
// estimated token count fits within maxTokens. The context agent orders
// blocks most important first (profile, goals, then logs), so later blocks
// are sacrificed first. A single oversized leading block is kept as-is;
// callers should truncate individual blocks before budgeting.
func TrimParts(parts []string, maxTokens int) []string {
	for len(parts) > 1 {
		total := 0
		for _, p := range parts {
			total += Estimate(p)
		}
		if total <= maxTokens {
			break
		}
		parts = parts[:len(parts)-1]
	}
	return parts
}
