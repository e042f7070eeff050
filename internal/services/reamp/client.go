package reamp

import (
	"context"
	"errors"

	"nam2aidax/internal/services"
	"nam2aidax/internal/stagerun"
)

// Client defines re-amping behaviour: rendering a stimulus recording through
// a captured profile to obtain the profile's wet response.
type Client interface {
	Render(ctx context.Context, profilePath, stimulusPath, renderedPath string) error
}

// Runner abstracts stage execution for testability.
type Runner interface {
	Run(ctx context.Context, cmd stagerun.Command) (stagerun.Result, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the native re-amping executable. The process contract is
// `<binary> <profilePath> <stimulusPath> <renderedOutputPath>` and a
// readable, non-empty wav must exist at renderedOutputPath on success.
type CLI struct {
	binary string
	runner Runner
}

// NewCLI constructs a client using the given stage runner.
func NewCLI(runner Runner, opts ...Option) *CLI {
	cli := &CLI{binary: "nam-reamp", runner: runner}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Render launches the re-amp binary and enforces its output contract.
func (c *CLI) Render(ctx context.Context, profilePath, stimulusPath, renderedPath string) error {
	if profilePath == "" {
		return errors.New("profile path required")
	}
	if stimulusPath == "" {
		return errors.New("stimulus path required")
	}
	if renderedPath == "" {
		return errors.New("rendered output path required")
	}

	_, err := c.runner.Run(ctx, stagerun.Command{
		Stage:           services.StageReamping,
		Binary:          c.binary,
		Args:            []string{profilePath, stimulusPath, renderedPath},
		ExpectedOutputs: []string{renderedPath},
	})
	return err
}

var _ Client = (*CLI)(nil)
