package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nam2aidax/internal/artifact"
	"nam2aidax/internal/config"
	"nam2aidax/internal/history"
	"nam2aidax/internal/logging"
	"nam2aidax/internal/pipeline"
	"nam2aidax/internal/services"
	"nam2aidax/internal/services/reamp"
	"nam2aidax/internal/services/trainer"
	"nam2aidax/internal/stagerun"
	"nam2aidax/internal/workspace"
)

const defaultDestination = "out.aidax"

type convertOptions struct {
	profile     string
	stimulus    string
	trainerDir  string
	destination string
	epochs      int
	modelType   string
	skip        bool
}

func runConvert(cmd *cobra.Command, cmdCtx *commandContext, opts *convertOptions) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}

	req, err := buildRequest(cmd, cfg, opts)
	if err != nil {
		return err
	}
	// Reject bad input before any directory or database exists.
	if err := pipeline.Validate(req); err != nil {
		return err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	manager, err := workspace.NewManager(cfg.Paths.WorkspaceRoot)
	if err != nil {
		return fmt.Errorf("workspace manager: %w", err)
	}

	runner := stagerun.New(logger)
	orchestrator := pipeline.New(
		manager,
		reamp.NewCLI(runner, reamp.WithBinary(cfg.Tools.ReampBinary)),
		trainer.NewCLI(runner,
			trainer.WithPython(cfg.Tools.PythonBinary),
			trainer.WithScript(cfg.Tools.TrainerScript),
		),
		artifact.New(logger),
		logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	result, runErr := orchestrator.Run(ctx, req)
	recordRun(cfg, logger, req, result, started, runErr)
	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.ArtifactPath)
	return nil
}

// buildRequest merges flags with config defaults and expands user paths. Full
// input validation stays with the pipeline so every entry point shares it.
func buildRequest(cmd *cobra.Command, cfg *config.Config, opts *convertOptions) (pipeline.Request, error) {
	epochs := cfg.Training.Epochs
	if cmd.Flags().Changed("epochs") {
		epochs = opts.epochs
	}
	modelType := opts.modelType
	if modelType == "" {
		modelType = cfg.Training.ModelType
	}
	skip := cfg.Training.Skip
	if cmd.Flags().Changed("skip") {
		skip = opts.skip
	}

	req := pipeline.Request{
		Epochs:         epochs,
		ModelType:      pipeline.ModelType(modelType),
		SkipConnection: skip,
	}

	for _, field := range []struct {
		value  string
		target *string
	}{
		{opts.profile, &req.ProfilePath},
		{opts.stimulus, &req.StimulusPath},
		{opts.trainerDir, &req.TrainerDir},
		{opts.destination, &req.Destination},
	} {
		if field.value == "" {
			continue
		}
		expanded, err := config.ExpandPath(field.value)
		if err != nil {
			return pipeline.Request{}, services.Wrap(services.ErrInvalidInput, services.StageValidating, "expand path", err.Error(), nil)
		}
		*field.target = expanded
	}

	return req, nil
}

// recordRun persists the run outcome. History failures never fail the
// conversion; they are logged and dropped. Input errors are not recorded,
// keeping rejected invocations free of side effects.
func recordRun(cfg *config.Config, logger *slog.Logger, req pipeline.Request, result pipeline.Result, started time.Time, runErr error) {
	if !cfg.History.Enabled || services.IsUserError(runErr) {
		return
	}

	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		logger.Warn("history store unavailable", logging.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	record := history.Record{
		RunID:          result.RunID,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		Profile:        req.ProfilePath,
		Stimulus:       req.StimulusPath,
		Destination:    req.Destination,
		ModelType:      string(req.ModelType),
		Epochs:         req.Epochs,
		SkipConnection: req.SkipConnection,
		Status:         history.StatusSucceeded,
	}
	if runErr != nil {
		record.Status = history.StatusFailed
		record.Error = runErr.Error()
		if stage, ok := services.StageOf(runErr); ok {
			record.FailureStage = stage
		}
	}

	if _, err := store.Record(context.Background(), record); err != nil {
		logger.Warn("history record failed", logging.Error(err))
	}
}
