package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/peakform/coach-go/internal/logging"
)

// Pipeline runs the three agent stages in sequence: reasoning, context,
// output.
type Pipeline struct {
	reasoner *Reasoner
	context  *ContextAgent
	output   *OutputAgent
}

// NewPipeline constructs a Pipeline from its three stages.
func NewPipeline(reasoner *Reasoner, contextAgent *ContextAgent, output *OutputAgent) *Pipeline {
	return &Pipeline{
		reasoner: reasoner,
		context:  contextAgent,
		output:   output,
	}
}

// AskCoach answers question for the user. On success the result carries the
// agent-format fields plus the legacy aliases derived from them. On failure
// a CoachError value is returned instead; the pipeline never panics outward
// and never returns a Go error to the transport layer.
func (p *Pipeline) AskCoach(ctx context.Context, question, userID string) (*CoachResult, *CoachError) {
	log := logging.FromContext(ctx)

	reasoning, err := p.reasoner.Run(ctx, question)
	if err != nil {
		log.Error("pipeline: reasoning stage failed", slog.Any("error", err))
		return nil, &CoachError{
			Error:   ErrorRequestFailed,
			Details: err.Error(),
		}
	}
	log.Debug("pipeline: reasoning complete",
		slog.String("intent", string(reasoning.Intent)),
		slog.String("action", reasoning.Action))

	contextResult := p.context.Run(ctx, reasoning, userID)
	log.Debug("pipeline: context assembled",
		slog.Bool("context_available", contextResult.ContextAvailable))

	output, err := p.output.Run(ctx, question, reasoning, contextResult)
	if err != nil {
		log.Error("pipeline: output stage failed", slog.Any("error", err))
		return nil, &CoachError{
			Error:   ErrorRequestFailed,
			Details: err.Error(),
		}
	}

	result := withLegacyAliases(output)
	result.Intent = reasoning.Intent
	return result, nil
}

// withLegacyAliases copies the agent-format output into a CoachResult and
// derives the legacy fields older clients read.
func withLegacyAliases(output CoachOutput) *CoachResult {
	trainingAdvice := strings.Join(output.Insights, " ")
	if trainingAdvice == "" {
		trainingAdvice = output.Message
	}
	return &CoachResult{
		Message:     output.Message,
		Plan:        output.Plan,
		Insights:    output.Insights,
		NextAction:  output.NextAction,
		TrackMetric: output.TrackMetric,

		Summary:        output.Message,
		TrainingAdvice: trainingAdvice,
		ProgressionPlan: ProgressionPlan{
			Exercise: output.Plan.Exercise,
			NextLoad: output.Plan.NextLoad,
			Sets:     output.Plan.Sets,
			Reps:     output.Plan.Reps,
		},
	}
}
