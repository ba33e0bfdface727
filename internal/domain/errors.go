package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBlankInputExceeded marks a deliberate hang-up after repeated silence.
	ErrBlankInputExceeded = errors.New("blank input limit exceeded")
	// ErrBackendTimeout is returned when the model backend misses its deadline.
	ErrBackendTimeout = errors.New("model backend timed out")
	// ErrMaxIterations is returned when the tool loop hits its iteration guard.
	ErrMaxIterations = errors.New("tool loop exceeded maximum iterations")
	// ErrInvalidRequest is returned for turn requests that cannot be processed.
	ErrInvalidRequest = errors.New("invalid turn request")
)

// ToolNotFoundError is returned when the model names a tool that is not registered.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("no tool registered for %s", e.Name)
}

// SchemaMismatchError is returned when tool arguments do not match the tool's schema.
type SchemaMismatchError struct {
	Tool   string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Reason)
}

// PolicyBlockedError is returned when the tool policy refuses a call.
type PolicyBlockedError struct {
	Tool   string
	Reason string
}

func (e *PolicyBlockedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tool %s blocked by policy", e.Tool)
	}
	return fmt.Sprintf("tool %s blocked by policy: %s", e.Tool, e.Reason)
}

// ToolExecutionError wraps a failure raised by a tool's behavior.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// StoreError wraps a session store failure.
type StoreError struct {
	Op  string
	Key SessionKey
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session store %s %s/%s: %v", e.Op, e.Key.CallerID, e.Key.Date, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsRecoverableToolError reports whether err should be handed back to the
// model as a tool result while the loop keeps going.
func IsRecoverableToolError(err error) bool {
	var notFound *ToolNotFoundError
	var mismatch *SchemaMismatchError
	var blocked *PolicyBlockedError
	return errors.As(err, &notFound) || errors.As(err, &mismatch) || errors.As(err, &blocked)
}
