package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"nam2aidax/internal/artifact"
	"nam2aidax/internal/fileutil"
	"nam2aidax/internal/logging"
	"nam2aidax/internal/services"
	"nam2aidax/internal/services/reamp"
	"nam2aidax/internal/services/trainer"
	"nam2aidax/internal/wavinfo"
	"nam2aidax/internal/workspace"
)

// ModelType is the capacity tier of the trained network.
type ModelType string

const (
	ModelLightest ModelType = "Lightest"
	ModelLight    ModelType = "Light"
	ModelStandard ModelType = "Standard"
	ModelHeavy    ModelType = "Heavy"
)

// ModelTypes lists the accepted capacity tiers in ascending order.
var ModelTypes = []ModelType{ModelLightest, ModelLight, ModelStandard, ModelHeavy}

// ParseModelType validates a user-supplied capacity tier.
func ParseModelType(value string) (ModelType, error) {
	for _, mt := range ModelTypes {
		if string(mt) == value {
			return mt, nil
		}
	}
	return "", fmt.Errorf("unknown model type %q (expected one of %s)", value, modelTypeList())
}

func modelTypeList() string {
	names := make([]string, len(ModelTypes))
	for i, mt := range ModelTypes {
		names[i] = string(mt)
	}
	return strings.Join(names, "|")
}

// Request carries the validated-once configuration for a single conversion.
type Request struct {
	// ProfilePath is the captured NAM model (--nam).
	ProfilePath string
	// StimulusPath is the dry DI recording (--di).
	StimulusPath string
	// TrainerDir is the training procedure checkout (--trainer).
	TrainerDir string
	// Destination is where the final artifact lands (--out).
	Destination string

	Epochs         int
	ModelType      ModelType
	SkipConnection bool
}

// Result is the terminal value of a successful run.
type Result struct {
	ArtifactPath string
	RunID        string
	Duration     time.Duration
}

// Orchestrator sequences Validate, Prepare, Reamp, Train, and Collect over
// an exclusively owned workspace. The machine is linear and one-shot per
// invocation; no state is revisited and nothing is retried in-process.
type Orchestrator struct {
	workspaces *workspace.Manager
	reamp      reamp.Client
	trainer    trainer.Client
	collector  *artifact.Collector
	logger     *slog.Logger
}

// New constructs an orchestrator. A nil logger is replaced with a no-op
// logger.
func New(workspaces *workspace.Manager, reampClient reamp.Client, trainerClient trainer.Client, collector *artifact.Collector, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		workspaces: workspaces,
		reamp:      reampClient,
		trainer:    trainerClient,
		collector:  collector,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes the full conversion. Validation failures surface before any
// workspace exists; once a workspace is acquired its release is deferred so
// the scratch tree is removed on every path, including cancellation.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	if err := o.runStage(ctx, services.StageValidating, func(context.Context) error {
		return Validate(req)
	}); err != nil {
		return Result{RunID: runID}, err
	}

	ws, err := o.acquireWorkspace(ctx)
	if err != nil {
		return Result{RunID: runID}, err
	}
	defer func() {
		if releaseErr := ws.Release(); releaseErr != nil {
			logger.Error("workspace release failed", logging.Error(releaseErr))
		}
	}()

	var profile, stimulus string
	if err := o.runStage(ctx, services.StagePreparing, func(context.Context) error {
		var stageErr error
		if profile, stageErr = ws.Stage(req.ProfilePath, workspace.ProfileName); stageErr != nil {
			return services.Wrap(services.ErrStaging, services.StagePreparing, "stage profile", "", stageErr)
		}
		if stimulus, stageErr = ws.Stage(req.StimulusPath, workspace.StimulusName); stageErr != nil {
			return services.Wrap(services.ErrStaging, services.StagePreparing, "stage stimulus", "", stageErr)
		}
		return nil
	}); err != nil {
		return Result{RunID: runID}, err
	}

	if err := o.runStage(ctx, services.StageReamping, func(stageCtx context.Context) error {
		rendered := ws.StagingPath(workspace.RenderedName)
		if renderErr := o.reamp.Render(stageCtx, profile, stimulus, rendered); renderErr != nil {
			return ensureStage(renderErr, services.StageReamping)
		}
		return populateDataset(ws, stimulus, rendered)
	}); err != nil {
		return Result{RunID: runID}, err
	}

	if err := o.runStage(ctx, services.StageTraining, func(stageCtx context.Context) error {
		trainErr := o.trainer.Train(stageCtx, trainer.Spec{
			DatasetDir:     ws.DatasetDir(),
			TrainerDir:     req.TrainerDir,
			OutputDir:      ws.OutputDir(),
			Epochs:         req.Epochs,
			ModelType:      string(req.ModelType),
			SkipConnection: req.SkipConnection,
		})
		return ensureStage(trainErr, services.StageTraining)
	}); err != nil {
		return Result{RunID: runID}, err
	}

	var artifactPath string
	if err := o.runStage(ctx, services.StageCollecting, func(context.Context) error {
		var collectErr error
		artifactPath, collectErr = o.collector.Collect(ws.OutputDir(), artifact.DefaultExtension, req.Destination)
		return ensureStage(collectErr, services.StageCollecting)
	}); err != nil {
		return Result{RunID: runID}, err
	}

	result := Result{
		ArtifactPath: artifactPath,
		RunID:        runID,
		Duration:     time.Since(start),
	}
	logger.Info("conversion completed",
		logging.String("artifact", result.ArtifactPath),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (o *Orchestrator) acquireWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	ws, err := o.workspaces.Acquire()
	if err != nil {
		return nil, services.Wrap(services.ErrStaging, services.StagePreparing, "acquire workspace", "", err)
	}
	logging.WithContext(ctx, o.logger).Debug("workspace acquired", logging.String("path", ws.Root))
	return ws, nil
}

// runStage wraps one transition with uniform lifecycle logging.
func (o *Orchestrator) runStage(ctx context.Context, stage string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, stage)
	logger := logging.WithContext(stageCtx, o.logger)

	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	startedAt := time.Now()

	if err := fn(stageCtx); err != nil {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Error(err),
		)
		return err
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(startedAt)),
	)
	return nil
}

// populateDataset copies the dry stimulus and the rendered reference into the
// dataset area under the fixed names the trainer requires, then sanity-checks
// the pair the way the trainer's own preparation would.
func populateDataset(ws *workspace.Workspace, stimulus, rendered string) error {
	datasetIn := ws.DatasetPath(workspace.DatasetInputName)
	datasetOut := ws.DatasetPath(workspace.DatasetOutputName)

	if err := fileutil.CopyFile(stimulus, datasetIn); err != nil {
		return services.Wrap(services.ErrStaging, services.StageReamping, "populate dataset", "copy dry input", err)
	}
	if err := fileutil.CopyFile(rendered, datasetOut); err != nil {
		return services.Wrap(services.ErrStaging, services.StageReamping, "populate dataset", "copy rendered reference", err)
	}
	if err := wavinfo.CheckPair(datasetIn, datasetOut); err != nil {
		return services.Wrap(services.ErrContract, services.StageReamping, "check dataset pair", "", err)
	}
	return nil
}

// Validate checks a request without touching the filesystem beyond read-only
// stats. Callers that must avoid side effects on bad input run it before
// creating any directory; Run repeats it as its first stage.
func Validate(req Request) error {
	fail := func(op, msg string) error {
		return services.Wrap(services.ErrInvalidInput, services.StageValidating, op, msg, nil)
	}

	if strings.TrimSpace(req.ProfilePath) == "" {
		return fail("check profile", "profile path required")
	}
	if !fileutil.IsRegularFile(req.ProfilePath) {
		return fail("check profile", fmt.Sprintf("%s does not exist or is not a regular file", req.ProfilePath))
	}
	if strings.TrimSpace(req.StimulusPath) == "" {
		return fail("check stimulus", "stimulus path required")
	}
	if !fileutil.IsRegularFile(req.StimulusPath) {
		return fail("check stimulus", fmt.Sprintf("%s does not exist or is not a regular file", req.StimulusPath))
	}
	if strings.TrimSpace(req.TrainerDir) == "" {
		return fail("check trainer", "trainer directory required")
	}
	if !fileutil.IsDirectory(req.TrainerDir) {
		return fail("check trainer", fmt.Sprintf("%s does not exist or is not a directory", req.TrainerDir))
	}
	if strings.TrimSpace(req.Destination) == "" {
		return fail("check destination", "destination path required")
	}
	if req.Epochs <= 0 {
		return fail("check epochs", fmt.Sprintf("epochs must be a positive integer, got %d", req.Epochs))
	}
	if _, err := ParseModelType(string(req.ModelType)); err != nil {
		return fail("check model type", err.Error())
	}
	return nil
}

// ensureStage guarantees err carries a failing stage, wrapping plain client
// errors that bypassed the stage runner.
func ensureStage(err error, stage string) error {
	if err == nil {
		return nil
	}
	if _, ok := services.StageOf(err); ok {
		return err
	}
	var stageErr *services.StageError
	if errors.As(err, &stageErr) {
		return err
	}
	return services.Wrap(services.ErrExecution, stage, "", "", err)
}
