package services

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidInput marks user errors detected before any side effect.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStaging marks workspace population failures.
	ErrStaging = errors.New("staging error")
	// ErrExecution marks collaborators that exited nonzero.
	ErrExecution = errors.New("execution error")
	// ErrContract marks collaborators that exited zero without honoring
	// their declared output contract.
	ErrContract = errors.New("contract violation")
	// ErrNoArtifact marks collection failures where no artifact was produced.
	ErrNoArtifact = errors.New("no artifact produced")
)

// StageError carries the failing pipeline stage alongside the classification
// marker and the underlying cause.
type StageError struct {
	Marker error
	Stage  string
	Detail string
	Cause  error
}

func (e *StageError) Error() string {
	parts := make([]string, 0, 3)
	if e.Marker != nil {
		parts = append(parts, e.Marker.Error())
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}

func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Marker != nil {
		errs = append(errs, e.Marker)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Wrap builds an error that includes stage context while tagging it with the
// provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExecution
	}
	return &StageError{
		Marker: marker,
		Stage:  strings.TrimSpace(stage),
		Detail: buildDetail(stage, operation, message),
		Cause:  err,
	}
}

// StageOf returns the failing stage name recorded on err, if any.
func StageOf(err error) (string, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) && stageErr.Stage != "" {
		return stageErr.Stage, true
	}
	return "", false
}

// IsUserError reports whether err stems from bad input rather than a runtime
// failure. The CLI maps user errors to exit status 2.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Details extracts the human-readable portion of a wrapped stage error,
// falling back to the full error string.
func Details(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) && stageErr.Detail != "" {
		return stageErr.Detail
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
