package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JiajunSong-Bigai/inference-engine/internal/engine"
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
	"github.com/JiajunSong-Bigai/inference-engine/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Problem string
	RunID   string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single recorded run.
type ReplayRunResult struct {
	RunID         string             `json:"run_id"`
	Problem       string             `json:"problem"`
	Facts         int                `json:"facts"`
	Iterations    int                `json:"iterations"`
	Replayed      int                `json:"replayed_iterations"`
	Deterministic bool               `json:"deterministic"`
	Divergence    *engine.Divergence `json:"divergence,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <journal> <problem-file>",
		Short: "Rerun recorded runs and verify determinism",
		Long: `Rerun every journaled run of the problems in a file on a fresh database
and check that the same facts are accepted, from the same rules, at the
same generations.

Runs are matched to problems by problem hash, so a problem that was
edited since it was recorded is not replayed. Each replay uses the
iteration count of its recorded run as its ceiling.

Exit codes:
  0 - All runs replayed identically
  1 - A replay diverged from its record
  2 - Command error (journal not found, run of another problem, etc.)

Examples:
  euclid replay runs.db problems/triangles.cue
  euclid replay runs.db problems/triangles.cue --problem orthocenter
  euclid replay runs.db problems/circle.txt --run 01920f3e-7c1a-7b3d-9a2e-5f1c2d3e4f50`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Problem, "problem", "", "replay only runs of the named problem")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, journal, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(journal); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("journal not found: %s", journal),
		})
	}

	problems, err := LoadProblemFile(path, opts.Problem)
	if err != nil {
		return formatter.fail(ExitCommandError, err)
	}
	byHash := make(map[string]*ir.Problem, len(problems))
	for _, p := range problems {
		h, err := ir.HashProblem(*p)
		if err != nil {
			return formatter.fail(ExitCommandError, err)
		}
		byHash[h] = p
	}

	st, err := store.Open(journal)
	if err != nil {
		return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeJournal, Message: err.Error()})
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger().Error("error closing journal", "error", closeErr)
		}
	}()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.fail(ExitCommandError, &LoadError{
				Code:    ErrCodeNotFound,
				Message: fmt.Sprintf("run %s not found in %s", opts.RunID, journal),
			})
		}
		if err != nil {
			return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeJournal, Message: err.Error()})
		}
		if _, ok := byHash[run.ProblemHash]; !ok {
			return formatter.fail(ExitCommandError, &LoadError{
				Code:    ErrCodeRunMismatch,
				Message: fmt.Sprintf("run %s was recorded for a version of %q that %s does not define", run.ID, run.Problem, path),
			})
		}
		runs = []store.Run{run}
	} else {
		all, err := st.ListRuns(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeJournal, Message: err.Error()})
		}
		for _, r := range all {
			if _, ok := byHash[r.ProblemHash]; ok {
				runs = append(runs, r)
			}
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		AllDeterministic: true,
	}
	for _, run := range runs {
		if run.Status == store.StatusRunning {
			formatter.VerboseLog("skipping unfinished run %s", run.ID)
			continue
		}
		rr, err := replayRun(ctx, opts, st, run, byHash[run.ProblemHash])
		if err != nil {
			return formatter.fail(ExitCommandError, err)
		}
		result.Runs = append(result.Runs, rr)
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
	}
	result.TotalRuns = len(result.Runs)

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayRun reruns one recorded run and compares it with its journal.
func replayRun(ctx context.Context, opts *ReplayOptions, st *store.Store, run store.Run, prob *ir.Problem) (ReplayRunResult, error) {
	facts, err := st.ReadFacts(ctx, run.ID)
	if err != nil {
		return ReplayRunResult{}, &LoadError{Code: ErrCodeJournal, Message: err.Error()}
	}
	recorded := make([]engine.Derivation, len(facts))
	for i, f := range facts {
		recorded[i] = engine.Derivation{Generation: f.Generation, Rule: f.Rule, Predicate: f.Predicate}
	}

	engineOpts := []engine.Option{
		engine.WithLogger(opts.Logger()),
		engine.WithMaxIterations(run.Iterations),
	}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	res, div, err := engine.Replay(ctx, prob.Hypotheses, recorded, engineOpts...)
	if err != nil {
		return ReplayRunResult{}, fmt.Errorf("replay %s: %w", run.ID, err)
	}

	opts.Logger().Debug("run replayed", "run_id", run.ID, "replay_run_id", res.RunID, "diverged", div != nil)
	return ReplayRunResult{
		RunID:         run.ID,
		Problem:       run.Problem,
		Facts:         len(recorded),
		Iterations:    run.Iterations,
		Replayed:      res.Iterations,
		Deterministic: div == nil && res.Iterations == run.Iterations,
		Divergence:    div,
	}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	if !result.AllDeterministic {
		if err := f.Failure(ErrCodeDeterminism, "determinism verification failed", result); err != nil {
			return err
		}
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return f.Success(result)
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult) error {
	if result.TotalRuns == 0 {
		f.Printf("No recorded runs of these problems.\n")
		return nil
	}

	f.Printf("Replay Summary: %d run(s)\n\n", result.TotalRuns)
	for _, r := range result.Runs {
		status := "✓"
		if !r.Deterministic {
			status = "✗"
		}
		f.Printf("%s %s %s: %d facts, %d iterations\n", status, r.RunID, r.Problem, r.Facts, r.Iterations)
		if r.Divergence != nil {
			f.Printf("  %s\n", r.Divergence)
		} else if r.Replayed != r.Iterations {
			f.Printf("  replay took %d iterations\n", r.Replayed)
		}
	}

	if result.AllDeterministic {
		f.Printf("\n✓ All runs replayed identically\n")
		return nil
	}

	f.Printf("\n✗ Determinism verification failed\n")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
