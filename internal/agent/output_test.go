package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOutputAgent_ParsesModelResponse(t *testing.T) {
	t.Parallel()

	c := &scriptedChat{responses: []string{`{
		"message": "Great work this week, let's push the squat.",
		"plan": {"exercise": "back squat", "next_load": "102.5kg", "sets": "3", "reps": "5"},
		"insights": ["Your squat volume is trending up"],
		"next_action": "Add 2.5kg next session",
		"track_metric": ["squat top set weight"]
	}`}}
	a := NewOutputAgent(c)

	got, err := a.Run(context.Background(), "how should I progress", ReasoningResult{Intent: IntentWorkoutPlan}, ContextResult{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Plan.Exercise != "back squat" || got.Plan.NextLoad != "102.5kg" {
		t.Errorf("Plan = %+v", got.Plan)
	}
	if got.NextAction != "Add 2.5kg next session" {
		t.Errorf("NextAction = %q", got.NextAction)
	}
}

func TestOutputAgent_MalformedResponseYieldsFallback(t *testing.T) {
	t.Parallel()

	c := &scriptedChat{responses: []string{"Sure! Here's my advice: train hard."}}
	a := NewOutputAgent(c)

	got, err := a.Run(context.Background(), "q", ReasoningResult{}, ContextResult{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Message == "" || got.NextAction == "" {
		t.Errorf("fallback incomplete: %+v", got)
	}
	if len(got.Insights) == 0 {
		t.Error("fallback should carry at least one insight")
	}
}

func TestOutputAgent_FillsMissingFields(t *testing.T) {
	t.Parallel()

	c := &scriptedChat{responses: []string{`{"message": "Keep it up!"}`}}
	a := NewOutputAgent(c)

	got, err := a.Run(context.Background(), "q", ReasoningResult{}, ContextResult{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Insights == nil || got.TrackMetric == nil {
		t.Error("slice fields should never be nil")
	}
	if got.NextAction != "Continue with your current routine" {
		t.Errorf("NextAction = %q", got.NextAction)
	}
}

func TestOutputAgent_ChatFailurePropagates(t *testing.T) {
	t.Parallel()

	c := &scriptedChat{errs: []error{errors.New("model unavailable")}}
	a := NewOutputAgent(c)

	if _, err := a.Run(context.Background(), "q", ReasoningResult{}, ContextResult{}); err == nil {
		t.Fatal("want error when the chat call fails")
	}
}

func TestBuildContextSummary(t *testing.T) {
	t.Parallel()

	c := ContextResult{
		Profile: map[string]any{"age": 30},
		Goals:   []GoalContext{{Description: "lose 5kg"}},
		Insights: []string{
			"insight a",
			"insight b",
		},
	}
	got := buildContextSummary(c)

	for _, want := range []string{"Profile:", "Goals:", "Relevant Insights: insight a; insight b"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestBuildContextSummary_Empty(t *testing.T) {
	t.Parallel()

	if got := buildContextSummary(ContextResult{}); got != "No specific context available" {
		t.Errorf("buildContextSummary = %q", got)
	}
}

func TestBuildContextSummary_CapsRecords(t *testing.T) {
	t.Parallel()

	var training []TrainingContext
	for i := 0; i < 8; i++ {
		training = append(training, TrainingContext{Activity: "run", Date: "2025-01-01"})
	}
	got := buildContextSummary(ContextResult{TrainingSummary: training})

	if n := strings.Count(got, `"activity":"run"`); n != maxSummaryItems {
		t.Errorf("summary carries %d training records, want %d", n, maxSummaryItems)
	}
}
