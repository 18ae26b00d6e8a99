package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JiajunSong-Bigai/inference-engine/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Snapshot bool // print the stored database rendering of the run
}

// RunSummary is one journal run in history output.
type RunSummary struct {
	ID         string `json:"id"`
	Problem    string `json:"problem"`
	Status     string `json:"status"`
	Iterations int    `json:"iterations"`
	Generation uint64 `json:"generation"`
	Error      string `json:"error,omitempty"`
	Engine     string `json:"engine_version"`
}

// FactEntry is one journal fact in history output.
type FactEntry struct {
	Seq        int64  `json:"seq"`
	Origin     string `json:"origin"`
	Rule       string `json:"rule,omitempty"`
	Generation uint64 `json:"generation"`
	Predicate  string `json:"predicate"`
}

// RunDetail is the history output for a single run.
type RunDetail struct {
	Run      RunSummary  `json:"run"`
	Facts    []FactEntry `json:"facts"`
	Snapshot string      `json:"snapshot,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <journal> [run-id]",
		Short: "Inspect runs recorded in a journal",
		Long: `List the runs recorded in a SQLite journal, oldest first, or show the
facts of one run in the order they were accepted.

Runs are recorded by prove and saturate when --journal (or the journal
config key) is set.

Examples:
  euclid history runs.db
  euclid history runs.db 01920f3e-7c1a-7b3d-9a2e-5f1c2d3e4f50
  euclid history runs.db 01920f3e-7c1a-7b3d-9a2e-5f1c2d3e4f50 --snapshot`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 2 {
				runID = args[1]
			}
			return runHistory(opts, args[0], runID, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Snapshot, "snapshot", false, "print the stored database snapshot of the run")

	return cmd
}

func runHistory(opts *HistoryOptions, journal, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Open would create an empty journal; a typo should not.
	if _, err := os.Stat(journal); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("journal not found: %s", journal),
		})
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

	if runID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeJournal, Message: err.Error()})
		}
		summaries := make([]RunSummary, len(runs))
		for i, r := range runs {
			summaries[i] = summarizeRun(r)
		}
		if formatter.JSON() {
			return formatter.Success(summaries)
		}
		if len(summaries) == 0 {
			formatter.Printf("No runs recorded.\n")
			return nil
		}
		for _, s := range summaries {
			printRun(formatter, s)
		}
		return nil
	}

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.fail(ExitCommandError, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("run %s not found in %s", runID, journal),
		})
	}
	if err != nil {
		return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeJournal, Message: err.Error()})
	}
	facts, err := st.ReadFacts(ctx, runID)
	if err != nil {
		return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeJournal, Message: err.Error()})
	}

	detail := RunDetail{Run: summarizeRun(run), Facts: make([]FactEntry, len(facts))}
	for i, f := range facts {
		detail.Facts[i] = FactEntry{
			Seq:        f.Seq,
			Origin:     f.Origin,
			Rule:       f.Rule,
			Generation: f.Generation,
			Predicate:  f.Predicate.String(),
		}
	}
	if opts.Snapshot {
		raw, ok, err := st.ReadSnapshot(ctx, runID)
		if err != nil {
			return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeJournal, Message: err.Error()})
		}
		if !ok {
			return formatter.fail(ExitCommandError, &LoadError{
				Code:    ErrCodeNotFound,
				Message: fmt.Sprintf("run %s has no snapshot (saturate records one)", runID),
			})
		}
		detail.Snapshot = string(raw)
	}

	if formatter.JSON() {
		return formatter.Success(detail)
	}
	printRun(formatter, detail.Run)
	for _, f := range detail.Facts {
		rule := f.Rule
		if rule == "" {
			rule = f.Origin
		}
		formatter.Printf("  %4d  %-10s %s\n", f.Seq, rule, f.Predicate)
	}
	if detail.Snapshot != "" {
		formatter.Printf("\n%s", detail.Snapshot)
	}
	return nil
}

func summarizeRun(r store.Run) RunSummary {
	return RunSummary{
		ID:         r.ID,
		Problem:    r.Problem,
		Status:     r.Status,
		Iterations: r.Iterations,
		Generation: r.Generation,
		Error:      r.Error,
		Engine:     r.EngineVersion,
	}
}

func printRun(f *OutputFormatter, s RunSummary) {
	f.Printf("%s  %-12s %-10s %d iterations, generation %d\n", s.ID, s.Problem, s.Status, s.Iterations, s.Generation)
	if s.Error != "" {
		f.Printf("  error: %s\n", s.Error)
	}
}
