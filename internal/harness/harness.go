package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/JiajunSong-Bigai/inference-engine/internal/compiler"
	"github.com/JiajunSong-Bigai/inference-engine/internal/engine"
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
	"github.com/JiajunSong-Bigai/inference-engine/internal/testutil"
)

// Harness runs scenarios. Each scenario gets a fresh database and a fixed
// run id.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger handed to every driver. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with the default harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes a scenario and evaluates its assertions.
//
// A runtime error from the driver (iteration ceiling, invalid hypothesis)
// is recorded on the Result and checked by a `fails` assertion; it fails
// the scenario otherwise. Errors loading the problem and context
// cancellation are returned.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	prob, err := resolveProblem(scenario)
	if err != nil {
		return nil, err
	}
	batches, err := batchesOf(prob, scenario)
	if err != nil {
		return nil, err
	}

	d, result, err := h.saturate(ctx, scenario, batches)
	if err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Ctx:     ctx,
		Driver:  d,
		Problem: prob,
		Rerun: func(ctx context.Context) (*Result, error) {
			_, again, err := h.saturate(ctx, scenario, batches)
			return again, err
		},
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	if result.ErrorCode != "" && !expectsFailure(scenario.Assertions) {
		result.AddError(fmt.Sprintf("run stopped with %s", result.ErrorCode))
	}
	return result, nil
}

// saturate runs every batch on a fresh driver. Runtime errors end the
// batches early and are recorded as the result's ErrorCode.
func (h *Harness) saturate(ctx context.Context, scenario *Scenario, batches [][]ir.Predicate) (*engine.Driver, *Result, error) {
	opts := []engine.Option{
		engine.WithLogger(h.logger),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator("scenario-" + scenario.Name)),
	}
	if scenario.MaxIterations > 0 {
		opts = append(opts, engine.WithMaxIterations(scenario.MaxIterations))
	}
	d := engine.New(nil, opts...)

	result := NewResult(scenario.Name)
	for step, batch := range batches {
		res, err := d.Run(ctx, batch)
		if res != nil {
			result.Iterations = res.Iterations
			result.Generation = res.Generation
			for _, inc := range res.Increased {
				result.Increased = append(result.Increased, IncreasedFact{
					Step:      step,
					Rule:      inc.Rule,
					Predicate: inc.Predicate.String(),
				})
			}
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, fmt.Errorf("scenario %s: %w", scenario.Name, ctxErr)
			}
			code, ok := runtimeCode(err)
			if !ok {
				return nil, nil, fmt.Errorf("scenario %s: step %d: %w", scenario.Name, step, err)
			}
			result.ErrorCode = code
			break
		}
	}
	return d, result, nil
}

// RunAll executes scenarios with at most parallel running at once and
// returns their results in input order. A non-positive parallel runs them
// one at a time. The first hard error cancels the rest.
func (h *Harness) RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]*Result, error) {
	if parallel < 1 {
		parallel = 1
	}
	results := make([]*Result, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := h.Run(gctx, sc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func resolveProblem(s *Scenario) (*ir.Problem, error) {
	if s.Problem == "" {
		return &ir.Problem{Name: s.Name}, nil
	}
	ps, err := compiler.LoadFile(s.Problem)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	if s.ProblemName == "" {
		if len(ps) != 1 {
			return nil, fmt.Errorf("scenario %s: %s defines %d problems, set problem_name", s.Name, s.Problem, len(ps))
		}
		return ps[0], nil
	}
	for _, p := range ps {
		if p.Name == s.ProblemName {
			return p, nil
		}
	}
	return nil, fmt.Errorf("scenario %s: problem %q not found in %s", s.Name, s.ProblemName, s.Problem)
}

// batchesOf returns the hypothesis batches in run order: the problem or
// inline hypotheses first, then each step.
func batchesOf(prob *ir.Problem, s *Scenario) ([][]ir.Predicate, error) {
	first := prob.Hypotheses
	if s.Problem == "" {
		var err error
		if first, err = parseAll(s.Hypotheses); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	out := [][]ir.Predicate{first}
	for i, step := range s.Steps {
		ps, err := parseAll(step)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: steps[%d]: %w", s.Name, i, err)
		}
		out = append(out, ps)
	}
	return out, nil
}

func parseAll(lines []string) ([]ir.Predicate, error) {
	out := make([]ir.Predicate, 0, len(lines))
	for _, l := range lines {
		p, err := ir.ParsePredicate(l)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func runtimeCode(err error) (string, bool) {
	if engine.IsIterationLimitError(err) {
		return string(engine.ErrCodeIterationLimit), true
	}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code), true
	}
	return "", false
}

func expectsFailure(as []Assertion) bool {
	for _, a := range as {
		if a.Type == AssertFails {
			return true
		}
	}
	return false
}
