package executor

import (
	"errors"
	"fmt"
)

// CommandError reports an external command that failed to start or exited non-zero.
// ExitCode is -1 when the process never ran.
type CommandError struct {
	Name     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command '%s' failed: %v\nstderr: %s", e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("command '%s' failed: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// StageError attaches a pipeline stage name to a failed command.
type StageError struct {
	Stage string
	Err   error
}

// NewStageError wraps err for stage, or returns nil when err is nil.
func NewStageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	var cerr *CommandError
	if errors.As(e.Err, &cerr) {
		return fmt.Sprintf("stage failed: %s, exit code %d, stderr %s", e.Stage, cerr.ExitCode, cerr.Stderr)
	}
	return fmt.Sprintf("stage failed: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ExitCode returns the exit code of the underlying command, or -1 if unknown.
func (e *StageError) ExitCode() int {
	var cerr *CommandError
	if errors.As(e.Err, &cerr) {
		return cerr.ExitCode
	}
	return -1
}
