package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/peakform/coach-go/internal/rag"
	"github.com/peakform/coach-go/internal/store"
)

const reasoningJSON = `{
	"intent": "workout_plan_request",
	"requires_context": true,
	"context_fields": ["training_logs", "goals", "profile"],
	"action": "generate_workout_plan",
	"notes": ""
}`

const outputJSON = `{
	"message": "Here's your plan for next week.",
	"plan": {"exercise": "deadlift", "next_load": "140kg", "sets": "3", "reps": "5"},
	"insights": ["Pulls are progressing well", "Sleep more on heavy days"],
	"next_action": "Run the plan for two weeks",
	"track_metric": ["deadlift top set"]
}`

func newTestPipeline(chatClient *scriptedChat, users store.UserStore, retriever ContextRetriever) *Pipeline {
	return NewPipeline(
		NewReasoner(chatClient),
		NewContextAgent(users, retriever),
		NewOutputAgent(chatClient),
	)
}

func TestAskCoach_EndToEnd(t *testing.T) {
	t.Parallel()

	chatClient := &scriptedChat{responses: []string{reasoningJSON, outputJSON}}
	users := newFakeUserStore()
	users.goals = []store.Goal{{Description: "deadlift 160kg"}}
	retriever := &fakeContextRetriever{result: rag.Result{
		Contents: []string{"progressive overload beats program hopping"},
		Method:   rag.MethodRanked,
	}}

	p := newTestPipeline(chatClient, users, retriever)
	result, coachErr := p.AskCoach(context.Background(), "plan my next training block", "u")
	if coachErr != nil {
		t.Fatalf("AskCoach error: %+v", coachErr)
	}

	if result.Message != "Here's your plan for next week." {
		t.Errorf("Message = %q", result.Message)
	}
	if result.Summary != result.Message {
		t.Errorf("Summary = %q, want alias of Message", result.Summary)
	}
	if result.TrainingAdvice != "Pulls are progressing well Sleep more on heavy days" {
		t.Errorf("TrainingAdvice = %q", result.TrainingAdvice)
	}
	if result.ProgressionPlan.Exercise != "deadlift" || result.ProgressionPlan.NextLoad != "140kg" {
		t.Errorf("ProgressionPlan = %+v", result.ProgressionPlan)
	}
	if retriever.calls != 1 {
		t.Errorf("retriever calls = %d, want 1", retriever.calls)
	}
	if chatClient.calls != 2 {
		t.Errorf("chat calls = %d, want 2 (reasoning + output)", chatClient.calls)
	}
}

func TestAskCoach_EmptyInsightsAliasFallsBackToMessage(t *testing.T) {
	t.Parallel()

	chatClient := &scriptedChat{responses: []string{
		reasoningJSON,
		`{"message": "Stay consistent!", "plan": {}, "insights": [], "next_action": "Keep going", "track_metric": []}`,
	}}
	p := newTestPipeline(chatClient, newFakeUserStore(), nil)

	result, coachErr := p.AskCoach(context.Background(), "any advice today", "u")
	if coachErr != nil {
		t.Fatalf("AskCoach error: %+v", coachErr)
	}
	if result.TrainingAdvice != "Stay consistent!" {
		t.Errorf("TrainingAdvice = %q, want message fallback", result.TrainingAdvice)
	}
}

func TestAskCoach_OutputFailureReturnsRequestError(t *testing.T) {
	t.Parallel()

	chatClient := &scriptedChat{
		responses: []string{reasoningJSON, ""},
		errs:      []error{nil, errors.New("model crashed mid-generation")},
	}
	p := newTestPipeline(chatClient, newFakeUserStore(), nil)

	result, coachErr := p.AskCoach(context.Background(), "plan my training", "u")
	if result != nil {
		t.Fatalf("want nil result, got %+v", result)
	}
	if coachErr == nil || coachErr.Error != ErrorRequestFailed {
		t.Fatalf("coachErr = %+v, want REQUEST_ERROR", coachErr)
	}
	if coachErr.Details == "" {
		t.Error("Details should carry the underlying cause")
	}
}

func TestAskCoach_ReasoningFailureReturnsRequestError(t *testing.T) {
	t.Parallel()

	chatClient := &scriptedChat{
		responses: []string{"", outputJSON},
		errs:      []error{errors.New("connection refused"), nil},
	}
	p := newTestPipeline(chatClient, newFakeUserStore(), nil)

	result, coachErr := p.AskCoach(context.Background(), "give me a workout for legs", "u")
	if result != nil {
		t.Fatalf("want nil result, got %+v", result)
	}
	if coachErr == nil || coachErr.Error != ErrorRequestFailed {
		t.Fatalf("coachErr = %+v, want REQUEST_ERROR", coachErr)
	}
	if coachErr.Details == "" {
		t.Error("Details should carry the underlying cause")
	}
	if chatClient.calls != 1 {
		t.Errorf("chat calls = %d, want 1 (later stages must not run)", chatClient.calls)
	}
}

func TestAskCoach_UnparseableReasoningStillAnswers(t *testing.T) {
	t.Parallel()

	// Reasoning returns prose instead of JSON; the keyword fallback
	// classifies and the output stage still runs.
	chatClient := &scriptedChat{
		responses: []string{"let me think about your workout...", outputJSON},
	}
	users := newFakeUserStore()
	p := newTestPipeline(chatClient, users, nil)

	result, coachErr := p.AskCoach(context.Background(), "give me a workout for legs", "u")
	if coachErr != nil {
		t.Fatalf("AskCoach error: %+v", coachErr)
	}
	if result.Message == "" {
		t.Error("want an answer despite reasoning parse failure")
	}
	if !users.fetched[FieldTrainingLogs] {
		t.Error("keyword-inferred workout intent should request training logs")
	}
}

func TestValidateResult(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		result  *CoachResult
		wantErr bool
	}{
		{"nil", nil, true},
		{"agent format", &CoachResult{Message: "hi", NextAction: "rest"}, false},
		{"legacy format", &CoachResult{Summary: "hi", TrainingAdvice: "rest more"}, false},
		{"message only", &CoachResult{Message: "hi"}, false},
		{"empty", &CoachResult{}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateResult(tc.result)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateResult() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
