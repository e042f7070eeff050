// Package stagerun invokes one external collaborator per pipeline stage with
// a fixed argument contract. It captures the process's combined output for
// diagnostics, maps nonzero exits to execution errors, and treats a zero exit
// without the declared outputs as a contract violation rather than a success.
package stagerun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"nam2aidax/internal/fileutil"
	"nam2aidax/internal/logging"
	"nam2aidax/internal/services"
)

var commandContext = exec.CommandContext

// outputTailLimit bounds the collaborator output kept for diagnostics.
const outputTailLimit = 8 * 1024

// Command describes a single collaborator invocation.
type Command struct {
	// Stage names the pipeline stage for error classification and logging.
	Stage string
	// Binary and Args form the process invocation.
	Binary string
	Args   []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
	// ExpectedOutputs must exist non-empty after a zero exit.
	ExpectedOutputs []string
}

// Result reports a completed invocation.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner executes stage commands synchronously. It never retries; repeating a
// long-running training job blindly is not safe because partial output such
// as checkpoint files may already exist.
type Runner struct {
	logger *slog.Logger
}

// New constructs a Runner. A nil logger is replaced with a no-op logger.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logging.NewComponentLogger(logger, "stagerun")}
}

// Run blocks until the collaborator exits, then enforces the output contract.
func (r *Runner) Run(ctx context.Context, command Command) (Result, error) {
	if strings.TrimSpace(command.Binary) == "" {
		return Result{}, services.Wrap(services.ErrExecution, command.Stage, "run", "collaborator binary required", nil)
	}

	cmd := commandContext(ctx, command.Binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	r.logger.Debug("collaborator starting",
		logging.String(logging.FieldStage, command.Stage),
		logging.String("binary", command.Binary),
		logging.Int("args", len(command.Args)),
	)

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Output:   tail(combined.Bytes()),
		Duration: time.Since(start),
	}

	if runErr != nil {
		result.ExitCode = exitCode(runErr)
		detail := fmt.Sprintf("%s exited with code %d", command.Binary, result.ExitCode)
		if result.Output != "" {
			detail = fmt.Sprintf("%s\n%s", detail, result.Output)
		}
		return result, services.Wrap(services.ErrExecution, command.Stage, "run collaborator", detail, runErr)
	}

	for _, path := range command.ExpectedOutputs {
		ok, err := fileutil.NonEmptyFile(path)
		if err != nil {
			return result, services.Wrap(services.ErrContract, command.Stage, "verify outputs", "inspect "+path, err)
		}
		if !ok {
			return result, services.Wrap(services.ErrContract, command.Stage, "verify outputs",
				fmt.Sprintf("declared output missing or empty: %s", path), nil)
		}
	}

	r.logger.Debug("collaborator finished",
		logging.String(logging.FieldStage, command.Stage),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func tail(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) > outputTailLimit {
		out = out[len(out)-outputTailLimit:]
	}
	return string(out)
}
