package agent

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/peakform/coach-go/internal/logging"
	"github.com/peakform/coach-go/internal/rag"
	"github.com/peakform/coach-go/internal/store"
)

const (
	// maxInsights bounds how many retrieved snippets reach the prompt.
	maxInsights = 3
	// maxInsightLen truncates each snippet so one long entry cannot crowd
	// out the rest of the context.
	maxInsightLen = 200
)

// ContextRetriever is the retrieval dependency of the context agent.
// Satisfied by *rag.Retriever.
type ContextRetriever interface {
	Retrieve(ctx context.Context, userID, query string) rag.Result
}

// ContextAgent assembles the user data the reasoning agent asked for. Each
// fetch is independent: a failing source is logged and skipped, never fatal.
type ContextAgent struct {
	users     store.UserStore
	retriever ContextRetriever
}

// NewContextAgent constructs a ContextAgent.
func NewContextAgent(users store.UserStore, retriever ContextRetriever) *ContextAgent {
	return &ContextAgent{users: users, retriever: retriever}
}

// Run gathers the requested context fields for the user plus, when the
// reasoning result asks for it, the most similar knowledge-base entries for
// the intent.
func (a *ContextAgent) Run(ctx context.Context, reasoning ReasoningResult, userID string) ContextResult {
	log := logging.FromContext(ctx)

	result := ContextResult{
		RequestedContext: reasoning.ContextFields,
		Profile:          map[string]any{},
		Goals:            []GoalContext{},
		TrainingSummary:  []TrainingContext{},
		Measurements:     []MeasurementContext{},
		NutritionSummary: []MealContext{},
		Insights:         []string{},
	}

	if reasoning.wantsField(FieldProfile) {
		profile, err := a.users.FetchProfile(ctx, userID)
		switch {
		case err != nil:
			log.Warn("context: profile fetch failed", slog.Any("error", err))
		case profile != nil:
			result.Profile = profileToMap(profile)
		}
	}

	if reasoning.wantsField(FieldGoals) {
		goals, err := a.users.FetchGoals(ctx, userID, store.DefaultGoalLimit)
		if err != nil {
			log.Warn("context: goals fetch failed", slog.Any("error", err))
		}
		for _, g := range goals {
			gc := GoalContext{Description: g.Description, Status: g.Status}
			if !g.TargetDate.IsZero() {
				gc.TargetDate = g.TargetDate.Format("2006-01-02")
			}
			result.Goals = append(result.Goals, gc)
		}
	}

	if reasoning.wantsField(FieldTrainingLogs) {
		logs, err := a.users.FetchTrainingLogs(ctx, userID, store.DefaultLogLimit)
		if err != nil {
			log.Warn("context: training logs fetch failed", slog.Any("error", err))
		}
		for _, l := range logs {
			result.TrainingSummary = append(result.TrainingSummary, TrainingContext{
				Activity:  l.Activity,
				Notes:     l.Notes,
				Duration:  l.Duration,
				Intensity: l.Intensity,
				Date:      l.LoggedAt.Format("2006-01-02"),
			})
		}
	}

	if reasoning.wantsField(FieldMealLogs) {
		meals, err := a.users.FetchMealLogs(ctx, userID, store.DefaultLogLimit)
		if err != nil {
			log.Warn("context: meal logs fetch failed", slog.Any("error", err))
		}
		for _, m := range meals {
			result.NutritionSummary = append(result.NutritionSummary, MealContext{
				Meal:     m.Meal,
				Calories: m.Calories,
				Protein:  m.Protein,
				Date:     m.LoggedAt.Format("2006-01-02"),
			})
		}
	}

	if reasoning.wantsField(FieldMeasurements) {
		measurements, err := a.users.FetchMeasurements(ctx, userID, store.DefaultLogLimit)
		if err != nil {
			log.Warn("context: measurements fetch failed", slog.Any("error", err))
		}
		for _, m := range measurements {
			result.Measurements = append(result.Measurements, MeasurementContext{
				Metric: m.Metric,
				Value:  m.Value,
				Unit:   m.Unit,
				Date:   m.TakenAt.Format("2006-01-02"),
			})
		}
	}

	if reasoning.RequiresContext && a.retriever != nil {
		query := queryTextForIntent(reasoning.Intent)
		retrieved := a.retriever.Retrieve(ctx, userID, query)
		if len(retrieved.Contents) > 0 {
			result.EmbeddingNotes = fmt.Sprintf(
				"Found %d relevant context entries via vector similarity search",
				len(retrieved.Contents))
			for _, c := range retrieved.Contents {
				if len(result.Insights) >= maxInsights {
					break
				}
				result.Insights = append(result.Insights, truncateRunes(c, maxInsightLen))
			}
		} else {
			result.EmbeddingNotes = "No relevant embeddings found"
		}
	}

	result.ContextAvailable = len(result.Profile) > 0 ||
		len(result.Goals) > 0 ||
		len(result.TrainingSummary) > 0 ||
		len(result.Measurements) > 0 ||
		len(result.NutritionSummary) > 0 ||
		len(result.Insights) > 0

	return result
}

// profileToMap renders the profile for prompt injection, omitting zero
// values so the prompt stays compact.
func profileToMap(p *store.Profile) map[string]any {
	out := map[string]any{}
	if p.Age > 0 {
		out["age"] = p.Age
	}
	if p.Sex != "" {
		out["sex"] = p.Sex
	}
	if p.HeightCM > 0 {
		out["height_cm"] = p.HeightCM
	}
	if p.WeightKG > 0 {
		out["weight_kg"] = p.WeightKG
	}
	if p.ActivityLevel != "" {
		out["activity_level"] = p.ActivityLevel
	}
	if p.ExperienceLvl != "" {
		out["experience_level"] = p.ExperienceLvl
	}
	if p.Injuries != "" {
		out["injuries"] = p.Injuries
	}
	if p.DietaryNotes != "" {
		out["dietary_notes"] = p.DietaryNotes
	}
	if p.PreferredUnits != "" {
		out["preferred_units"] = p.PreferredUnits
	}
	return out
}

// truncateRunes shortens s to at most n runes, never splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
