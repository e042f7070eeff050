package trainer

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"

	"nam2aidax/internal/services"
	"nam2aidax/internal/stagerun"
)

// Spec describes one training/export invocation.
type Spec struct {
	// DatasetDir contains the canonical input.wav/output.wav pair.
	DatasetDir string
	// TrainerDir is the training procedure checkout; the process runs with
	// this as its working directory so the wrapper can import its modules.
	TrainerDir string
	// OutputDir is where the exporter must leave the artifact.
	OutputDir string

	Epochs         int
	ModelType      string
	SkipConnection bool
}

// Client defines the training/export behaviour.
type Client interface {
	Train(ctx context.Context, spec Spec) error
}

// Runner abstracts stage execution for testability.
type Runner interface {
	Run(ctx context.Context, cmd stagerun.Command) (stagerun.Result, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithPython overrides the interpreter used to launch the wrapper.
func WithPython(python string) Option {
	return func(c *CLI) {
		if python != "" {
			c.python = python
		}
	}
}

// WithScript overrides the trainer wrapper entry point. A relative value is
// resolved against the trainer checkout.
func WithScript(script string) Option {
	return func(c *CLI) {
		if script != "" {
			c.script = script
		}
	}
}

// CLI launches the trainer wrapper through a Python interpreter.
type CLI struct {
	python string
	script string
	runner Runner
}

// NewCLI constructs a client using the given stage runner.
func NewCLI(runner Runner, opts ...Option) *CLI {
	cli := &CLI{python: "python3", script: "train_min.py", runner: runner}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Train blocks until the trainer/exporter exits. The artifact itself is
// discovered afterwards by the collector; the trainer's only enforced
// contract here is a zero exit.
func (c *CLI) Train(ctx context.Context, spec Spec) error {
	if spec.DatasetDir == "" {
		return errors.New("dataset directory required")
	}
	if spec.TrainerDir == "" {
		return errors.New("trainer directory required")
	}
	if spec.OutputDir == "" {
		return errors.New("output directory required")
	}
	if spec.Epochs <= 0 {
		return errors.New("epochs must be positive")
	}

	script := c.script
	if !filepath.IsAbs(script) {
		script = filepath.Join(spec.TrainerDir, script)
	}

	args := []string{
		script,
		"--data-dir", spec.DatasetDir,
		"--trainer", spec.TrainerDir,
		"--epochs", strconv.Itoa(spec.Epochs),
		"--model-type", spec.ModelType,
	}
	// Skip-connection stays a distinct boolean argument so capacity tier and
	// topology remain orthogonal.
	if spec.SkipConnection {
		args = append(args, "--skip-connection")
	}
	args = append(args, "--out-dir", spec.OutputDir)

	_, err := c.runner.Run(ctx, stagerun.Command{
		Stage:  services.StageTraining,
		Binary: c.python,
		Args:   args,
		Dir:    spec.TrainerDir,
		Env: []string{
			"TF_CPP_MIN_LOG_LEVEL=3",
			"CUBLAS_WORKSPACE_CONFIG=:4096:2",
		},
	})
	return err
}

var _ Client = (*CLI)(nil)
