package research

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by session operations.
//
// Validation errors are returned synchronously from update validators so
// Temporal rejects the update before any state mutates. Invalid-state
// errors mark operations issued against a session that cannot accept them.
// Pipeline errors mark planner/writer failures, which are fatal to the
// pipeline run but surfaced through the session result rather than as a
// workflow failure.

var (
	// ErrValidation marks bad caller input to the ledger or state machine.
	ErrValidation = errors.New("validation error")
	// ErrInvalidState marks an operation illegal in the current session state.
	ErrInvalidState = errors.New("invalid state")
)

// NewValidationError returns a caller-input error wrapping ErrValidation.
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewInvalidStateError returns a state error wrapping ErrInvalidState.
func NewInvalidStateError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// PipelineError wraps a fatal failure of a pipeline stage.
type PipelineError struct {
	Stage string // "plan" or "write"
	Err   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

// Unwrap allows errors.Is and errors.As to reach the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}
