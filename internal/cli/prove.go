package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// ProveOptions holds flags for the prove command.
type ProveOptions struct {
	*RootOptions
	Problem string   // select one problem from a multi-problem file
	Goals   []string // extra goal predicates
}

// GoalResult is the verdict on one goal.
type GoalResult struct {
	Goal   string `json:"goal"`
	Proved bool   `json:"proved"`
}

// ProblemProof is the prove output for one problem.
type ProblemProof struct {
	Problem    string       `json:"problem"`
	RunID      string       `json:"run_id"`
	Goals      []GoalResult `json:"goals"`
	Facts      int          `json:"facts"`
	Iterations int          `json:"iterations"`
	Generation uint64       `json:"generation"`
	ErrorCode  string       `json:"error_code,omitempty"`
}

// ProveResult holds the overall prove result.
type ProveResult struct {
	Problems []ProblemProof `json:"problems"`
	Proved   int            `json:"proved"`
	Unproved int            `json:"unproved"`
	Total    int            `json:"total"`
}

// NewProveCommand creates the prove command.
func NewProveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prove <problem-file>",
		Short: "Saturate a problem and check its goals",
		Long: `Saturate the hypotheses of a problem file and report, for every goal,
whether the reasoner derived it.

Problem files are CUE (.cue) or predicate text (.txt, goals prefixed
with '?'). Extra goals may be given with --goal.

Exit codes:
  0 - All goals proved
  1 - A goal was not proved, or the run hit the iteration ceiling
  2 - Command error (invalid paths, bad problem file, etc.)

Examples:
  euclid prove problems/orthocenter.cue
  euclid prove problems/triangles.cue --problem midsegment
  euclid prove problems/circle.txt --goal "cong(O,B,O,C)"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Problem, "problem", "", "prove only the named problem")
	cmd.Flags().StringArrayVar(&opts.Goals, "goal", nil, "additional goal predicate (repeatable)")

	return cmd
}

func runProve(opts *ProveOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	problems, err := LoadProblemFile(path, opts.Problem)
	if err != nil {
		return formatter.fail(ExitCommandError, err)
	}
	extra, err := parseGoals(opts.Goals)
	if err != nil {
		return formatter.fail(ExitCommandError, err)
	}
	for _, p := range problems {
		if len(p.Goals)+len(extra) == 0 {
			return formatter.fail(ExitCommandError, &LoadError{
				Code:    ErrCodeNoGoals,
				Message: fmt.Sprintf("problem %s has no goals; add some or pass --goal", p.Name),
			})
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result := ProveResult{Problems: make([]ProblemProof, 0, len(problems))}
	runs := make([]*problemRun, 0, len(problems))
	for _, p := range problems {
		formatter.VerboseLog("Proving %s (%d hypotheses)", p.Name, len(p.Hypotheses))
		run, err := saturateProblem(ctx, opts.RootOptions, p)
		if err != nil {
			return formatter.fail(ExitCommandError, err)
		}
		runs = append(runs, run)

		proof := ProblemProof{
			Problem:    p.Name,
			RunID:      run.Result.RunID,
			Facts:      len(run.Result.Increased),
			Iterations: run.Result.Iterations,
			Generation: run.Result.Generation,
			ErrorCode:  run.ErrorCode(),
		}
		for _, g := range append(append([]ir.Predicate{}, p.Goals...), extra...) {
			ok := run.Driver.Prove(g)
			proof.Goals = append(proof.Goals, GoalResult{Goal: g.String(), Proved: ok})
			result.Total++
			if ok {
				result.Proved++
			} else {
				result.Unproved++
			}
		}
		result.Problems = append(result.Problems, proof)
		printProof(formatter, proof)
	}

	if err := recordRuns(ctx, opts.RootOptions, runs, false); err != nil {
		return formatter.fail(ExitCommandError, err)
	}

	stopped := 0
	for _, r := range runs {
		if r.Stopped != nil {
			stopped++
		}
	}

	switch {
	case result.Unproved > 0:
		msg := fmt.Sprintf("%d of %d goal(s) not proved", result.Unproved, result.Total)
		if err := formatter.Failure(ErrCodeNotProved, msg, result); err != nil {
			return err
		}
		formatter.Printf("\nProve Summary: %d proved, %d unproved, %d total\n", result.Proved, result.Unproved, result.Total)
		return NewExitError(ExitFailure, msg)
	case stopped > 0:
		msg := fmt.Sprintf("%d run(s) hit the iteration ceiling", stopped)
		if err := formatter.Failure(ErrCodeIterationLimit, msg, result); err != nil {
			return err
		}
		formatter.Printf("\nProve Summary: %d proved, %d unproved, %d total (%s)\n", result.Proved, result.Unproved, result.Total, msg)
		return NewExitError(ExitFailure, msg)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	formatter.Printf("\nProve Summary: %d proved, %d unproved, %d total\n", result.Proved, result.Unproved, result.Total)
	formatter.Printf("✓ All goals proved\n")
	return nil
}

func parseGoals(lines []string) ([]ir.Predicate, error) {
	out := make([]ir.Predicate, 0, len(lines))
	for i, l := range lines {
		p, err := ir.ParsePredicate(l)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("--goal[%d]: %v", i, err)}
		}
		out = append(out, p)
	}
	return out, nil
}

func printProof(f *OutputFormatter, p ProblemProof) {
	f.Printf("%s: %d facts, %d iterations (run %s)\n", p.Problem, p.Facts, p.Iterations, p.RunID)
	if p.ErrorCode != "" {
		f.Printf("  stopped: %s\n", p.ErrorCode)
	}
	for _, g := range p.Goals {
		mark := "✗"
		if g.Proved {
			mark = "✓"
		}
		f.Printf("  %s %s\n", mark, g.Goal)
	}
}
