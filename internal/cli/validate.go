package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JiajunSong-Bigai/inference-engine/internal/compiler"
)

// ValidationIssue is one problem with a problem file.
type ValidationIssue struct {
	Problem string `json:"problem,omitempty"`
	File    string `json:"file,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Problems int               `json:"problems"`
	Files    int               `json:"files"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <problems-dir>",
		Short: "Validate problem files without saturating",
		Long: `Load every CUE and text problem under a directory and check it without
running the reasoner: syntax, predicate arity, duplicate predicates,
repeated points, goals that mention unknown points, and problem names
defined twice.

Every file is checked; all errors are reported together.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := LoadProblems(dir, LoadModeCollectAll)

	// Directory not found, no files, etc.
	if loadResult == nil {
		return formatter.fail(ExitCommandError, loadErrors[0])
	}

	formatter.VerboseLog("Found %d problem file(s) in %s", loadResult.FileCount, dir)

	result, err := ValidateProblems(loadResult, loadErrors)
	if err != nil {
		return formatter.fail(ExitCommandError, err)
	}
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	formatter.Printf("✓ All problems valid (%d problem(s) in %d file(s))\n", result.Problems, result.Files)
	return nil
}

// ValidateProblems checks every loaded problem and folds the load errors
// into the result.
func ValidateProblems(loaded *LoadResult, loadErrors []error) (ValidationResult, error) {
	result := ValidationResult{
		Problems: len(loaded.Problems),
		Files:    loaded.FileCount,
	}
	for _, err := range loadErrors {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			return result, err
		}
		result.Errors = append(result.Errors, ValidationIssue{
			File:    loadErr.Pos.Filename(),
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    loadErr.Line(),
		})
	}
	for _, p := range loaded.Problems {
		for _, v := range compiler.Validate(p) {
			result.Errors = append(result.Errors, ValidationIssue{
				Problem: p.Name,
				File:    loaded.Files[p.Name],
				Field:   v.Field,
				Message: v.Message,
				Code:    v.Code,
			})
		}
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(result.Errors))
	if formatter.JSON() {
		first := result.Errors[0]
		if err := formatter.Failure(first.Code, first.Message, result); err != nil {
			return err
		}
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, msg)
	}

	formatter.Printf("✗ Validation failed\n\n")
	for _, e := range result.Errors {
		loc := e.File
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Line)
		}
		if loc != "" {
			formatter.Printf("%s\n", loc)
		}
		where := e.Field
		if e.Problem != "" {
			where = e.Problem + "." + e.Field
		}
		formatter.Printf("  %s: %s: %s\n\n", e.Code, where, e.Message)
	}

	return NewExitError(ExitFailure, msg)
}
