package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/peakform/coach-go/internal/logging"
)

// NewAskCmd constructs the `coach ask` command, which runs the coaching
// pipeline once for a single question and prints the answer.
func NewAskCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the fitness coach a question",
		Long: `Ask the coach a natural language fitness question.

The answer is grounded in the stored profile, goals, training logs, and
retrieved fitness knowledge of the user given with --user.

Examples:
  coach ask --user 7f6c3a52-1f04-4f7a-9a1d-2b8a2f9c4711 "how do I improve my squat?"
  coach ask --user 7f6c3a52-1f04-4f7a-9a1d-2b8a2f9c4711 "what should I eat before a morning run?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if _, err := uuid.Parse(userID); err != nil {
				return fmt.Errorf("ask: --user must be a valid UUID")
			}

			deps, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer deps.Close()

			question := strings.Join(args, " ")
			result, coachErr := deps.Pipeline.AskCoach(ctx, question, userID)
			if coachErr != nil {
				return fmt.Errorf("ask: %s: %s", coachErr.Error, coachErr.Details)
			}

			fmt.Println(result.Message)
			if len(result.Insights) > 0 {
				fmt.Println()
				for _, insight := range result.Insights {
					fmt.Printf("  - %s\n", insight)
				}
			}
			if result.Plan.Exercise != "" {
				fmt.Printf("\nPlan: %s", result.Plan.Exercise)
				if result.Plan.Sets != "" || result.Plan.Reps != "" {
					fmt.Printf(" (%s x %s)", result.Plan.Sets, result.Plan.Reps)
				}
				if result.Plan.NextLoad != "" {
					fmt.Printf(" at %s", result.Plan.NextLoad)
				}
				fmt.Println()
			}
			if result.NextAction != "" {
				fmt.Printf("\nNext: %s\n", result.NextAction)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (UUID) whose data grounds the answer")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
