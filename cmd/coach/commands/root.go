// Package commands defines all Cobra CLI commands for the coach binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/peakform/coach-go/internal/audit"
	"github.com/peakform/coach-go/internal/config"
	"github.com/peakform/coach-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "coach",
		Short: "PeakForm Coach, an AI fitness coach powered by LLMs",
		Long: `Coach is an AI fitness assistant backed by your own training data.

It answers workout, nutrition, and progress questions through a three-stage
agent pipeline: intent reasoning, personal context retrieval, and coached
output. Answers are grounded in your stored profile, goals, training logs,
and semantically retrieved fitness knowledge.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.coach/config.yaml).
See 'coach --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.coach/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
