// Command coach is the entry point for the PeakForm fitness coaching agent.
// It provides a CLI interface (via Cobra) and an HTTP API for the three-stage
// coaching pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/peakform/coach-go/cmd/coach/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
