package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JiajunSong-Bigai/inference-engine/internal/engine"
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
	"github.com/JiajunSong-Bigai/inference-engine/internal/store"
)

// problemRun is the outcome of saturating one problem.
type problemRun struct {
	Problem *ir.Problem
	Driver  *engine.Driver
	Result  *engine.Result

	// Stopped is the runtime error the run ended with, if any. The
	// partial result and database stay usable.
	Stopped error
}

// ErrorCode returns the runtime error code of a stopped run.
func (r *problemRun) ErrorCode() string {
	if r.Stopped == nil {
		return ""
	}
	if engine.IsIterationLimitError(r.Stopped) {
		return string(engine.ErrCodeIterationLimit)
	}
	return ErrCodeGeneric
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// commandContext derives a context from the command's that is cancelled on
// SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (o *RootOptions) newDriver() *engine.Driver {
	opts := []engine.Option{
		engine.WithLogger(o.Logger()),
		engine.WithMaxIterations(o.MaxIterations),
	}
	if o.RunIDs != nil {
		opts = append(opts, engine.WithRunIDGenerator(o.RunIDs))
	}
	return engine.New(nil, opts...)
}

// saturateProblem runs one problem on a fresh database. Hitting the
// iteration ceiling is reported in Stopped; any other error aborts.
func saturateProblem(ctx context.Context, opts *RootOptions, prob *ir.Problem) (*problemRun, error) {
	d := opts.newDriver()
	res, err := d.Run(ctx, prob.Hypotheses)
	run := &problemRun{Problem: prob, Driver: d, Result: res}
	if err != nil {
		if !engine.IsIterationLimitError(err) {
			return nil, fmt.Errorf("problem %s: %w", prob.Name, err)
		}
		opts.Logger().Warn("run stopped", "problem", prob.Name, "run_id", res.RunID, "error", err)
		run.Stopped = err
	}
	return run, nil
}

// recordRuns appends the runs to the journal when one is configured. With
// snapshot set the rendered database of each run is stored as well.
func recordRuns(ctx context.Context, opts *RootOptions, runs []*problemRun, snapshot bool) error {
	if opts.Journal == "" {
		return nil
	}
	st, err := store.Open(opts.Journal)
	if err != nil {
		return &LoadError{Code: ErrCodeJournal, Message: fmt.Sprintf("open journal: %v", err)}
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger().Error("error closing journal", "error", closeErr)
		}
	}()

	for _, r := range runs {
		if err := recordRun(ctx, st, r, snapshot); err != nil {
			return &LoadError{Code: ErrCodeJournal, Message: err.Error()}
		}
		opts.Logger().Debug("run recorded", "run_id", r.Result.RunID, "journal", opts.Journal)
	}
	return nil
}

func recordRun(ctx context.Context, st *store.Store, r *problemRun, snapshot bool) error {
	hash, err := ir.HashProblem(*r.Problem)
	if err != nil {
		return fmt.Errorf("hash problem %s: %w", r.Problem.Name, err)
	}
	runID := r.Result.RunID
	if _, err := st.BeginRun(ctx, store.Run{
		ID:          runID,
		Problem:     r.Problem.Name,
		ProblemHash: hash,
	}); err != nil {
		return err
	}

	facts := make([]store.Fact, len(r.Result.Increased))
	for i, d := range r.Result.Increased {
		facts[i] = store.Fact{Predicate: d.Predicate, Rule: d.Rule, Generation: d.Generation}
	}
	if _, err := st.WriteFacts(ctx, runID, facts); err != nil {
		return err
	}

	if snapshot {
		var buf bytes.Buffer
		if err := r.Driver.Database().Dump(&buf); err != nil {
			return fmt.Errorf("render database: %w", err)
		}
		if err := st.WriteSnapshot(ctx, runID, buf.Bytes()); err != nil {
			return err
		}
	}

	return st.FinishRun(ctx, runID, store.Outcome{
		Iterations: r.Result.Iterations,
		Generation: r.Result.Generation,
		Err:        r.Stopped,
	})
}
