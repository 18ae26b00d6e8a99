package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/JiajunSong-Bigai/inference-engine/internal/engine"
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// AssertionContext carries what assertions query.
type AssertionContext struct {
	Ctx     context.Context
	Driver  *engine.Driver
	Problem *ir.Problem

	// Rerun saturates the scenario again on a fresh database. Used by
	// stable.
	Rerun func(ctx context.Context) (*Result, error)
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func assertProves(d *engine.Driver, a Assertion, want bool) error {
	p, err := ir.ParsePredicate(a.Predicate)
	if err != nil {
		return err
	}
	if d.Prove(p) == want {
		return nil
	}
	expected, actual := "proved", "not proved"
	if !want {
		expected, actual = actual, expected
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %s", p, expected),
		Actual:   actual,
	}
}

func assertCount(result *Result, a Assertion) error {
	kind, err := ir.ParseKind(a.Kind)
	if err != nil {
		return err
	}
	n := 0
	for _, inc := range result.Increased {
		if strings.HasPrefix(inc.Predicate, kind.String()+"(") {
			n++
		}
	}
	if n >= a.AtLeast {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("at least %d %s facts", a.AtLeast, kind),
		Actual:   fmt.Sprintf("%d", n),
	}
}

func assertGoals(d *engine.Driver, prob *ir.Problem) error {
	if prob == nil || len(prob.Goals) == 0 {
		return &AssertionError{Type: AssertGoals, Expected: "a problem with goals", Actual: "no goals"}
	}
	failed := d.ProveAll(prob.Goals)
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, len(failed))
	for i, g := range failed {
		names[i] = g.String()
	}
	return &AssertionError{
		Type:     AssertGoals,
		Expected: fmt.Sprintf("all %d goals proved", len(prob.Goals)),
		Actual:   "not proved: " + strings.Join(names, ", "),
	}
}

func assertStable(ctx context.Context, result *Result, rerun func(context.Context) (*Result, error)) error {
	if rerun == nil {
		return fmt.Errorf("stable: no rerun available")
	}
	again, err := rerun(ctx)
	if err != nil {
		return fmt.Errorf("stable: %w", err)
	}
	if slices.Equal(result.Increased, again.Increased) {
		return nil
	}
	return &AssertionError{
		Type:     AssertStable,
		Expected: fmt.Sprintf("%d identical facts on a fresh database", len(result.Increased)),
		Actual:   fmt.Sprintf("%d facts, first difference at %d", len(again.Increased), firstDifference(result.Increased, again.Increased)),
	}
}

func firstDifference(a, b []IncreasedFact) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	return min(len(a), len(b))
}

func assertFails(result *Result, a Assertion) error {
	if result.ErrorCode == a.Code {
		return nil
	}
	actual := result.ErrorCode
	if actual == "" {
		actual = "run completed"
	}
	return &AssertionError{Type: AssertFails, Expected: a.Code, Actual: actual}
}

// EvaluateAssertions checks every assertion and returns the failure
// messages. Does not fail-fast.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertProves:
			err = assertProves(actx.Driver, a, true)
		case AssertNotProves:
			err = assertProves(actx.Driver, a, false)
		case AssertCount:
			err = assertCount(result, a)
		case AssertGoals:
			err = assertGoals(actx.Driver, actx.Problem)
		case AssertStable:
			err = assertStable(actx.Ctx, result, actx.Rerun)
		case AssertFails:
			err = assertFails(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
