// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
//
// Client-fault errors (ErrInvalidInput, ErrDependencyUnavailable) are raised
// before a discovery run starts. ErrRunFailed marks a run that started and
// was recorded as failed; only its stored message is exposed.
package errors

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided, such as an empty document set.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")
)

// Capability errors.
var (
	// ErrDependencyUnavailable indicates a required capability, such as clustering, is absent.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Run errors.
var (
	// ErrRunFailed indicates a discovery run aborted and produced no candidates.
	ErrRunFailed = errors.New("discovery run failed")
)

// RunError carries the stored diagnostic message of a failed run.
// It never includes a call stack.
type RunError struct {
	RunID   string
	Message string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s failed: %s", e.RunID, e.Message)
}

// Unwrap allows errors.Is(err, ErrRunFailed).
func (e *RunError) Unwrap() error {
	return ErrRunFailed
}

// IsClientFault reports whether err should map to a client-fault response.
func IsClientFault(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDependencyUnavailable)
}

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
