package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"nam2aidax/internal/services"
)

const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, formatError(err))
			// Input and flag mistakes get the usage text; runtime pipeline
			// failures stay a single diagnostic line.
			if services.IsUserError(err) {
				fmt.Fprint(stderr, cmd.UsageString())
			}
		}
		return exitCodeFor(err)
	}
	return exitSuccess
}

// exitCodeFor maps a pipeline error to the CLI exit contract: 2 for input
// and usage problems, 1 for everything else.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	if services.IsUserError(err) {
		return exitUsage
	}
	return exitFailure
}

func formatError(err error) string {
	if stage, ok := services.StageOf(err); ok {
		return fmt.Sprintf("nam2aidax: %s failed: %s", stage, err)
	}
	return fmt.Sprintf("nam2aidax: %s", err)
}
