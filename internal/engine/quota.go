package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxIterations is the default ceiling on queue pops per run.
const DefaultMaxIterations = 20000

// iterationBudget counts queue pops for one run and enforces the ceiling.
type iterationBudget struct {
	limit   int
	current int
}

func newIterationBudget(limit int) *iterationBudget {
	return &iterationBudget{limit: limit}
}

// Check counts one iteration and fails once the count exceeds the limit.
// A non-positive limit disables the ceiling.
func (b *iterationBudget) Check(runID string) error {
	b.current++
	if b.limit > 0 && b.current > b.limit {
		return &IterationLimitError{
			RunID:      runID,
			Iterations: b.current,
			Limit:      b.limit,
		}
	}
	return nil
}

// IterationLimitError is returned when a run exceeds its iteration ceiling.
// The database keeps every fact accepted before the limit and stays usable.
type IterationLimitError struct {
	RunID      string
	Iterations int
	Limit      int
}

// Error implements the error interface.
func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("run %s exceeded max iterations: %d iterations > %d limit",
		e.RunID, e.Iterations, e.Limit)
}

// RuntimeError converts the error to its RuntimeError form.
func (e *IterationLimitError) RuntimeError() *RuntimeError {
	return NewIterationLimitError(e.RunID, e.Iterations, e.Limit)
}

// AsIterationLimitError extracts an *IterationLimitError from err.
func AsIterationLimitError(err error) (*IterationLimitError, bool) {
	var le *IterationLimitError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
