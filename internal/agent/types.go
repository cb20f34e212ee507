// Package agent implements the three-stage coaching pipeline: a reasoning
// agent that classifies the user's intent, a context agent that assembles
// only the data that intent needs, and an output agent that produces the
// final coaching response.
package agent

// Intent classifies what the user is asking for.
type Intent string

const (
	IntentWorkoutPlan    Intent = "workout_plan_request"
	IntentNutrition      Intent = "nutrition_question"
	IntentProgressReview Intent = "progress_review"
	IntentLogWorkout     Intent = "log_workout"
	IntentMotivation     Intent = "motivation_support"
	IntentGeneralChat    Intent = "general_chat"
)

// validIntents is the closed set the reasoning agent may emit. Anything
// else is coerced to general_chat.
var validIntents = map[Intent]bool{
	IntentWorkoutPlan:    true,
	IntentNutrition:      true,
	IntentProgressReview: true,
	IntentLogWorkout:     true,
	IntentMotivation:     true,
	IntentGeneralChat:    true,
}

// Valid reports whether i is one of the allowed intents.
func (i Intent) Valid() bool { return validIntents[i] }

// Context field names the reasoning agent may request.
const (
	FieldProfile      = "profile"
	FieldGoals        = "goals"
	FieldTrainingLogs = "training_logs"
	FieldMealLogs     = "meal_logs"
	FieldMeasurements = "measurements"
	FieldHealthData   = "health_data"
)

// ReasoningResult is the reasoning agent's decision: what the user wants
// and what data the context agent should fetch.
type ReasoningResult struct {
	Intent          Intent   `json:"intent"`
	RequiresContext bool     `json:"requires_context"`
	ContextFields   []string `json:"context_fields"`
	Action          string   `json:"action"`
	Notes           string   `json:"notes"`
}

// wantsField reports whether the reasoning agent requested the named
// context field.
func (r *ReasoningResult) wantsField(name string) bool {
	for _, f := range r.ContextFields {
		if f == name {
			return true
		}
	}
	return false
}

// GoalContext is a fitness goal formatted for prompt injection.
type GoalContext struct {
	Description string `json:"description"`
	TargetDate  string `json:"target_date,omitempty"`
	Status      string `json:"status,omitempty"`
}

// TrainingContext is a recent workout formatted for prompt injection.
type TrainingContext struct {
	Activity  string `json:"activity"`
	Notes     string `json:"notes,omitempty"`
	Duration  int    `json:"duration_minutes,omitempty"`
	Intensity string `json:"intensity,omitempty"`
	Date      string `json:"date"`
}

// MealContext is a recent meal formatted for prompt injection.
type MealContext struct {
	Meal     string  `json:"meal"`
	Calories int     `json:"calories,omitempty"`
	Protein  float64 `json:"protein_g,omitempty"`
	Date     string  `json:"date"`
}

// MeasurementContext is a body measurement formatted for prompt injection.
type MeasurementContext struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	Date   string  `json:"date"`
}

// ContextResult is everything the context agent assembled for the output
// agent.
type ContextResult struct {
	ContextAvailable bool                 `json:"context_available"`
	RequestedContext []string             `json:"requested_context"`
	Profile          map[string]any       `json:"profile"`
	Goals            []GoalContext        `json:"goals"`
	TrainingSummary  []TrainingContext    `json:"training_summary"`
	Measurements     []MeasurementContext `json:"measurements"`
	NutritionSummary []MealContext        `json:"nutrition_summary"`
	EmbeddingNotes   string               `json:"embedding_notes"`
	Insights         []string             `json:"insights"`
}

// Plan is the structured training recommendation in a coach response.
// Fields are free-text so the model can express loads and schemes naturally.
type Plan struct {
	Exercise  string `json:"exercise,omitempty"`
	NextLoad  string `json:"next_load,omitempty"`
	Sets      string `json:"sets,omitempty"`
	Reps      string `json:"reps,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// CoachOutput is the output agent's structured response.
type CoachOutput struct {
	Message     string   `json:"message"`
	Plan        Plan     `json:"plan"`
	Insights    []string `json:"insights"`
	NextAction  string   `json:"next_action"`
	TrackMetric []string `json:"track_metric"`
}

// ProgressionPlan is the legacy plan shape older clients still read.
type ProgressionPlan struct {
	Exercise string `json:"exercise"`
	NextLoad string `json:"next_load"`
	Sets     string `json:"sets"`
	Reps     string `json:"reps"`
}

// CoachResult is the full pipeline response. It carries the current agent
// fields and the legacy aliases derived from them, so old and new clients
// both parse it.
type CoachResult struct {
	Message     string   `json:"message"`
	Plan        Plan     `json:"plan"`
	Insights    []string `json:"insights"`
	NextAction  string   `json:"next_action"`
	TrackMetric []string `json:"track_metric"`

	// Legacy aliases.
	Summary         string          `json:"summary"`
	TrainingAdvice  string          `json:"training_advice"`
	ProgressionPlan ProgressionPlan `json:"progression_plan"`

	// Intent is the classified intent the answer was produced under.
	// Not part of the wire format; used for history and logging.
	Intent Intent `json:"-"`
}

// CoachError is the fallback-result shape returned when the pipeline fails.
type CoachError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// Error codes a CoachError may carry. The pipeline emits ErrorRequestFailed
// for every stage failure; the other codes are reserved for callers that
// surface stage-specific failures.
const (
	ErrorRequestFailed = "REQUEST_ERROR"
	ErrorEmbedFailed   = "EMBED_FAIL"
	ErrorInvalidJSON   = "INVALID_JSON"
)
