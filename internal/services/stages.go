package services

// Pipeline stage names used for error classification, logging, and the
// failing-stage diagnostic surfaced by the CLI.
const (
	StageValidating = "Validating"
	StagePreparing  = "Preparing"
	StageReamping   = "Reamping"
	StageTraining   = "Training"
	StageCollecting = "Collecting"
)
