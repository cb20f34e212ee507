package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/peakform/coach-go/internal/chat"
	"github.com/peakform/coach-go/internal/logging"
)

// Reasoner classifies the user's question and decides what context the
// answer needs.
type Reasoner struct {
	chat chat.Client
}

// NewReasoner constructs a Reasoner around the given chat client.
func NewReasoner(c chat.Client) *Reasoner {
	return &Reasoner{chat: c}
}

// Run classifies question. A chat transport failure is returned to the
// caller; unparseable model output falls back to keyword-based intent
// inference instead.
func (r *Reasoner) Run(ctx context.Context, question string) (ReasoningResult, error) {
	log := logging.FromContext(ctx)

	messages := []*schema.Message{
		schema.SystemMessage(reasoningPrompt),
		schema.UserMessage("Question: " + question),
	}

	text, err := r.chat.Run(ctx, messages)
	if err != nil {
		return ReasoningResult{}, fmt.Errorf("reasoning: %w", err)
	}

	// requires_context is decoded through a pointer so that a reply which
	// omits the field still gets context retrieval.
	var raw struct {
		Intent          Intent   `json:"intent"`
		RequiresContext *bool    `json:"requires_context"`
		ContextFields   []string `json:"context_fields"`
		Action          string   `json:"action"`
		Notes           string   `json:"notes"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &raw); err != nil {
		log.Warn("reasoning: could not parse model output, inferring intent from keywords",
			slog.Any("error", err),
			slog.String("raw", text))
		return inferFromKeywords(question), nil
	}

	result := ReasoningResult{
		Intent:          raw.Intent,
		RequiresContext: raw.RequiresContext == nil || *raw.RequiresContext,
		ContextFields:   raw.ContextFields,
		Action:          raw.Action,
		Notes:           raw.Notes,
	}
	if !result.Intent.Valid() {
		log.Warn("reasoning: invalid intent, defaulting to general_chat",
			slog.String("intent", string(result.Intent)))
		result.Intent = IntentGeneralChat
	}
	if result.ContextFields == nil {
		result.ContextFields = []string{}
	}
	if result.Action == "" {
		result.Action = "respond"
	}
	return result, nil
}

// inferFromKeywords is the fallback intent classifier used when the model
// gives no usable answer.
func inferFromKeywords(question string) ReasoningResult {
	q := strings.ToLower(question)

	intent := IntentGeneralChat
	switch {
	case containsAny(q, "workout", "exercise", "training"):
		intent = IntentWorkoutPlan
	case containsAny(q, "nutrition", "diet", "food", "meal"):
		intent = IntentNutrition
	case containsAny(q, "progress", "improve", "better"):
		intent = IntentProgressReview
	case containsAny(q, "log", "record"):
		intent = IntentLogWorkout
	case containsAny(q, "motivation", "encourage", "support"):
		intent = IntentMotivation
	}

	fields := []string{FieldProfile, FieldGoals}
	if intent == IntentWorkoutPlan {
		fields = []string{FieldTrainingLogs, FieldGoals, FieldProfile}
	}

	return ReasoningResult{
		Intent:          intent,
		RequiresContext: true,
		ContextFields:   fields,
		Action:          "respond",
		Notes:           "Intent inferred from keywords due to parsing error",
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
