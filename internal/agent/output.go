package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/peakform/coach-go/internal/budget"
	"github.com/peakform/coach-go/internal/chat"
	"github.com/peakform/coach-go/internal/logging"
)

// maxSummaryItems bounds how many records of each kind reach the prompt.
const maxSummaryItems = 5

// OutputAgent produces the final user-visible coaching response.
type OutputAgent struct {
	chat chat.Client
}

// NewOutputAgent constructs an OutputAgent around the given chat client.
func NewOutputAgent(c chat.Client) *OutputAgent {
	return &OutputAgent{chat: c}
}

// Run generates the coaching response for the question given the reasoning
// decision and assembled context. It never fails: unparseable model output
// yields a generic fallback response.
func (a *OutputAgent) Run(ctx context.Context, question string, reasoning ReasoningResult, contextResult ContextResult) (CoachOutput, error) {
	log := logging.FromContext(ctx)

	userContent := fmt.Sprintf(`User Intent: %s
Action Required: %s

User Context:
%s

User Question: %s

Provide a personalized coaching response based on the intent, context, and question.`,
		reasoning.Intent, reasoning.Action, buildContextSummary(contextResult), question)

	messages := []*schema.Message{
		schema.SystemMessage(coachOutputPrompt),
		schema.UserMessage(userContent),
	}

	text, err := a.chat.Run(ctx, messages)
	if err != nil {
		return CoachOutput{}, err
	}

	var result CoachOutput
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &result); err != nil {
		log.Warn("output: could not parse model response, returning fallback",
			slog.Any("error", err),
			slog.String("raw", text))
		return fallbackOutput(), nil
	}

	if result.Message == "" {
		result.Message = "I'm here to help you with your fitness journey!"
	}
	if result.Insights == nil {
		result.Insights = []string{}
	}
	if result.NextAction == "" {
		result.NextAction = "Continue with your current routine"
	}
	if result.TrackMetric == nil {
		result.TrackMetric = []string{}
	}
	return result, nil
}

// fallbackOutput is the generic response used when the model's output could
// not be parsed.
func fallbackOutput() CoachOutput {
	return CoachOutput{
		Message:     "I understand you're asking about fitness. Based on your question, I'd recommend focusing on consistent training and proper nutrition.",
		Plan:        Plan{},
		Insights:    []string{"Consistency is key to achieving fitness goals"},
		NextAction:  "Try asking a more specific question for personalized advice",
		TrackMetric: []string{"Workout frequency", "Progress photos"},
	}
}

// buildContextSummary renders the assembled context as compact JSON blocks
// for the output prompt.
func buildContextSummary(c ContextResult) string {
	var parts []string

	appendJSON := func(label string, v any) {
		b, err := json.Marshal(v)
		if err != nil {
			return
		}
		parts = append(parts, label+": "+string(b))
	}

	if len(c.Profile) > 0 {
		appendJSON("Profile", c.Profile)
	}
	if len(c.Goals) > 0 {
		appendJSON("Goals", c.Goals)
	}
	if len(c.TrainingSummary) > 0 {
		appendJSON("Recent Training", capSlice(c.TrainingSummary))
	}
	if len(c.NutritionSummary) > 0 {
		appendJSON("Recent Nutrition", capSlice(c.NutritionSummary))
	}
	if len(c.Measurements) > 0 {
		appendJSON("Measurements", capSlice(c.Measurements))
	}
	if len(c.Insights) > 0 {
		parts = append(parts, "Relevant Insights: "+strings.Join(c.Insights, "; "))
	}

	if len(parts) == 0 {
		return "No specific context available"
	}
	return strings.Join(budget.TrimParts(parts, budget.DefaultMaxContextTokens), "\n")
}

// capSlice limits a summary slice to maxSummaryItems.
func capSlice[T any](s []T) []T {
	if len(s) > maxSummaryItems {
		return s[:maxSummaryItems]
	}
	return s
}
