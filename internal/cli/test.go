package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JiajunSong-Bigai/inference-engine/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	Parallel int    // scenarios run at once
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Pass       bool     `json:"pass"`
	Facts      int      `json:"facts"`
	Iterations int      `json:"iterations"`
	Golden     string   `json:"golden,omitempty"` // "match", "updated"
	Errors     []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run reasoner scenarios",
		Long: `Run YAML scenarios against the reasoner.

Each scenario saturates inline hypotheses or a problem file, optionally in
several incremental steps, and checks assertions on the result. Scenarios
marked golden also compare the derived facts with golden/<name>.golden
next to the scenario file.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  euclid test ./scenarios
  euclid test ./scenarios --filter "ortho*"
  euclid test ./scenarios --update
  euclid test ./scenarios --parallel 4 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 1, "number of scenarios to run at once")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return formatter.fail(ExitCommandError, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("scenarios directory not found: %s", scenariosDir),
		})
	}
	if opts.Parallel < 1 {
		return formatter.fail(ExitCommandError, fmt.Errorf("--parallel must be at least 1, got %d", opts.Parallel))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeScanError, Message: err.Error()})
	}

	if len(scenarioFiles) == 0 {
		if formatter.JSON() {
			return formatter.Success(TestResult{Scenarios: []ScenarioResult{}})
		}
		formatter.Printf("No scenarios found.\n")
		return nil
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	results, err := runScenarios(ctx, opts, scenarioFiles)
	if err != nil {
		return formatter.fail(ExitCommandError, err)
	}

	result := TestResult{
		Scenarios: results,
		Total:     len(results),
	}
	for _, r := range results {
		printScenario(formatter, r)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.JSON() {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// runScenarios loads and runs every scenario file with at most
// opts.Parallel at once. Results keep the file order. Only cancellation
// is returned as an error; everything else fails its own scenario.
func runScenarios(ctx context.Context, opts *TestOptions, files []string) ([]ScenarioResult, error) {
	h := harness.New(harness.WithLogger(opts.Logger()))
	results := make([]ScenarioResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, f := range files {
		g.Go(func() error {
			res, err := runScenario(gctx, h, f, opts.Update)
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

// findScenarioFiles finds all YAML scenario files under dir. Golden
// directories are skipped.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and checks its golden file.
func runScenario(ctx context.Context, h *harness.Harness, scenarioFile string, update bool) (ScenarioResult, error) {
	out := ScenarioResult{Name: filepath.Base(scenarioFile), File: scenarioFile}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return out, nil
	}
	out.Name = scenario.Name

	result, err := h.Run(ctx, scenario)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return out, err
		}
		out.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return out, nil
	}
	out.Pass = result.Pass
	out.Facts = len(result.Increased)
	out.Iterations = result.Iterations
	out.Errors = result.Errors

	if !scenario.Golden {
		return out, nil
	}

	goldenPath := harness.GoldenPath(scenarioFile, scenario)
	if update {
		if err := harness.UpdateGolden(goldenPath, result); err != nil {
			out.Pass = false
			out.Errors = append(out.Errors, fmt.Sprintf("failed to update golden file: %v", err))
			return out, nil
		}
		out.Golden = "updated"
		return out, nil
	}

	if _, err := os.Stat(goldenPath); os.IsNotExist(err) {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("golden file %s missing (run with --update to create it)", goldenPath))
		return out, nil
	}
	match, err := harness.CompareGolden(goldenPath, result)
	if err != nil {
		out.Pass = false
		out.Errors = append(out.Errors, fmt.Sprintf("golden comparison failed: %v", err))
		return out, nil
	}
	if !match {
		out.Pass = false
		out.Errors = append(out.Errors, "derived facts do not match golden file (run with --update to regenerate)")
		return out, nil
	}
	out.Golden = "match"
	return out, nil
}

func printScenario(f *OutputFormatter, r ScenarioResult) {
	if !r.Pass {
		f.Printf("✗ %s\n", r.Name)
		for _, e := range r.Errors {
			f.Printf("  %s\n", e)
		}
		return
	}
	switch r.Golden {
	case "updated":
		f.Printf("✓ %s (golden updated)\n", r.Name)
	default:
		f.Printf("✓ %s\n", r.Name)
	}
	f.VerboseLog("  %s: %d facts, %d iterations", r.File, r.Facts, r.Iterations)
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(f *OutputFormatter, result TestResult) error {
	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := f.Failure(ErrCodeTestFailed, msg, result); err != nil {
			return err
		}
		// Test failures = exit code 1
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(result)
}

// outputTestText outputs the test summary as text.
func outputTestText(f *OutputFormatter, result TestResult) error {
	f.Printf("\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	f.Printf("✓ All scenarios passed\n")
	return nil
}
