package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while saturating.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeIterationLimit indicates the run exceeded its iteration ceiling.
	ErrCodeIterationLimit RuntimeErrorCode = "ITERATION_LIMIT"

	// ErrCodeInvalidPredicate indicates a hypothesis could not be normalized.
	ErrCodeInvalidPredicate RuntimeErrorCode = "INVALID_PREDICATE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsIterationLimitError reports whether err is an iteration ceiling error.
// It matches both *IterationLimitError and a RuntimeError with
// ErrCodeIterationLimit, through wrapping.
func IsIterationLimitError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeIterationLimit
	}
	var le *IterationLimitError
	return errors.As(err, &le)
}

// NewIterationLimitError creates a RuntimeError for an exceeded ceiling.
func NewIterationLimitError(runID string, iterations, limit int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeIterationLimit,
		Message: fmt.Sprintf("run exceeded max iterations (%d > %d)", iterations, limit),
		RunID:   runID,
		Details: map[string]string{
			"iterations":     fmt.Sprintf("%d", iterations),
			"max_iterations": fmt.Sprintf("%d", limit),
		},
	}
}

// NewInvalidPredicateError creates a RuntimeError for a hypothesis that
// failed validation.
func NewInvalidPredicateError(runID string, index int, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidPredicate,
		Message: fmt.Sprintf("hypothesis %d: %v", index, err),
		RunID:   runID,
		Details: map[string]string{"index": fmt.Sprintf("%d", index)},
		Err:     err,
	}
}
