package drover

import (
	"errors"
	"fmt"
)

// UsageError represents a configuration problem that should lead to exit
// code 2. Examples include bad flags, an unreadable run plan, or invalid
// run options.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *UsageError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a new UsageError
func NewUsageError(err error) *UsageError {
	return &UsageError{Err: err}
}

// IsUsageError checks if the error is or wraps a UsageError
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return err != nil && errors.As(err, &usageErr)
}

// RunFailureError represents a run where at least one scenario failed or
// errored (exit code 1)
type RunFailureError struct {
	Message string
}

func (e *RunFailureError) Error() string {
	return fmt.Sprintf("run failure: %s", e.Message)
}

// NewRunFailureError creates a new RunFailureError
func NewRunFailureError(message string) *RunFailureError {
	return &RunFailureError{Message: message}
}

// IsRunFailureError checks if the error is or wraps a RunFailureError
func IsRunFailureError(err error) bool {
	var failErr *RunFailureError
	return err != nil && errors.As(err, &failErr)
}

// NotFoundError represents a run with nothing to do: no scenarios are
// registered, or none match the given selectors (exit code 4)
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("nothing to run: %s", e.Message)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// IsNotFoundError checks if the error is or wraps a NotFoundError
func IsNotFoundError(err error) bool {
	var notFoundErr *NotFoundError
	return err != nil && errors.As(err, &notFoundErr)
}
