package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JiajunSong-Bigai/inference-engine/internal/database"
)

// SaturateOptions holds flags for the saturate command.
type SaturateOptions struct {
	*RootOptions
	Problem string
	Dump    bool // render the saturated database
}

// DerivedFact is one increased fact in saturate output.
type DerivedFact struct {
	Generation uint64 `json:"generation"`
	Rule       string `json:"rule,omitempty"`
	Predicate  string `json:"predicate"`
}

// Saturation is the saturate output for one problem.
type Saturation struct {
	Problem    string         `json:"problem"`
	RunID      string         `json:"run_id"`
	Increased  []DerivedFact  `json:"increased"`
	Iterations int            `json:"iterations"`
	Generation uint64         `json:"generation"`
	Stats      database.Stats `json:"stats"`
	ErrorCode  string         `json:"error_code,omitempty"`
	Dump       string         `json:"dump,omitempty"`
}

// NewSaturateCommand creates the saturate command.
func NewSaturateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaturateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "saturate <problem-file>",
		Short: "Saturate a problem and print what was derived",
		Long: `Saturate the hypotheses of a problem file and print every fact the run
added, with the rule that proposed it. Goals are ignored.

With --dump the saturated database is rendered per kind. With a journal
configured, the rendering is also stored as a compressed snapshot.

Examples:
  euclid saturate problems/orthocenter.cue
  euclid saturate problems/circle.txt --dump
  euclid saturate problems/circle.txt --journal runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaturate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Problem, "problem", "", "saturate only the named problem")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "render the saturated database")

	return cmd
}

func runSaturate(opts *SaturateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	problems, err := LoadProblemFile(path, opts.Problem)
	if err != nil {
		return formatter.fail(ExitCommandError, err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := make([]Saturation, 0, len(problems))
	runs := make([]*problemRun, 0, len(problems))
	for _, p := range problems {
		run, err := saturateProblem(ctx, opts.RootOptions, p)
		if err != nil {
			return formatter.fail(ExitCommandError, err)
		}
		runs = append(runs, run)

		sat := Saturation{
			Problem:    p.Name,
			RunID:      run.Result.RunID,
			Increased:  make([]DerivedFact, 0, len(run.Result.Increased)),
			Iterations: run.Result.Iterations,
			Generation: run.Result.Generation,
			Stats:      run.Driver.Database().Stats(),
			ErrorCode:  run.ErrorCode(),
		}
		for _, d := range run.Result.Increased {
			sat.Increased = append(sat.Increased, DerivedFact{
				Generation: d.Generation,
				Rule:       d.Rule,
				Predicate:  d.Predicate.String(),
			})
		}
		if opts.Dump {
			var buf bytes.Buffer
			if err := run.Driver.Database().Dump(&buf); err != nil {
				return formatter.fail(ExitCommandError, fmt.Errorf("render database: %w", err))
			}
			sat.Dump = buf.String()
		}
		out = append(out, sat)
		printSaturation(formatter, sat)
	}

	if err := recordRuns(ctx, opts.RootOptions, runs, true); err != nil {
		return formatter.fail(ExitCommandError, err)
	}

	for _, s := range out {
		if s.ErrorCode != "" {
			msg := fmt.Sprintf("problem %s stopped with %s", s.Problem, s.ErrorCode)
			if err := formatter.Failure(s.ErrorCode, msg, out); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}
	}
	if formatter.JSON() {
		return formatter.Success(out)
	}
	return nil
}

func printSaturation(f *OutputFormatter, s Saturation) {
	f.Printf("%s: %d facts, %d iterations, generation %d (run %s)\n",
		s.Problem, len(s.Increased), s.Iterations, s.Generation, s.RunID)
	if s.ErrorCode != "" {
		f.Printf("  stopped: %s\n", s.ErrorCode)
	}
	for _, d := range s.Increased {
		rule := d.Rule
		if rule == "" {
			rule = "given"
		}
		f.Printf("  %4d  %-10s %s\n", d.Generation, rule, d.Predicate)
	}
	if s.Dump != "" {
		f.Printf("\n%s", s.Dump)
	}
}
