package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// CompileProblem parses a CUE value into a Problem.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value should be the problem struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`problem: orthocenter: { hypotheses: [...] }`)
//	p, err := CompileProblem(v.LookupPath(cue.ParsePath("problem.orthocenter")))
func CompileProblem(v cue.Value) (*ir.Problem, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	prob := &ir.Problem{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		prob.Name = unquote(labels[len(labels)-1])
	}

	hypVal := v.LookupPath(cue.ParsePath("hypotheses"))
	if !hypVal.Exists() {
		return nil, &CompileError{
			Field:   "hypotheses",
			Message: "hypotheses are required",
			Pos:     v.Pos(),
		}
	}
	var err error
	prob.Hypotheses, err = parsePredicateList(hypVal, "hypotheses")
	if err != nil {
		return nil, err
	}

	goalVal := v.LookupPath(cue.ParsePath("goals"))
	if goalVal.Exists() {
		prob.Goals, err = parsePredicateList(goalVal, "goals")
		if err != nil {
			return nil, err
		}
	}

	return prob, nil
}

// CompileProblems compiles every field of a `problem:` struct, in source
// order. It stops at the first error.
func CompileProblems(v cue.Value) ([]*ir.Problem, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []*ir.Problem
	for iter.Next() {
		p, err := CompileProblem(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// parsePredicateList reads a list of predicate strings such as
// "coll(A,B,C)".
func parsePredicateList(v cue.Value, field string) ([]ir.Predicate, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of predicate strings",
			Pos:     v.Pos(),
		}
	}

	var out []ir.Predicate
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		text, err := item.String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "predicate must be a string",
				Pos:     item.Pos(),
			}
		}
		p, err := ir.ParsePredicate(text)
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: err.Error(),
				Pos:     item.Pos(),
				Err:     err,
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func unquote(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
