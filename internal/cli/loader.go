package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/JiajunSong-Bigai/inference-engine/internal/compiler"
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// LoadMode controls how errors are handled while loading a directory.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the problems loaded from a directory.
type LoadResult struct {
	Problems  []*ir.Problem
	Files     map[string]string // problem name -> defining file
	FileCount int               // number of problem files found
}

// LoadError represents an error that occurred while loading problems.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the source line of the error, or 0 when unknown.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeScanError      = "E002" // Directory scan error
	ErrCodeNoFiles        = "E003" // No problem files found
	ErrCodeLoadFailed     = "E004" // Problem file failed to parse or compile
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeDuplicate      = "E006" // Problem defined twice
	ErrCodeUnknownProblem = "E007" // --problem names no loaded problem
	ErrCodeJournal        = "E008" // Journal open, read or write failed
	ErrCodeNoGoals        = "E009" // Nothing to prove
	ErrCodeRunMismatch    = "E010" // Run was recorded for another problem

	ErrCodeNotProved      = "E_NOT_PROVED"    // A goal was not derived
	ErrCodeIterationLimit = "ITERATION_LIMIT" // A run hit the iteration ceiling
	ErrCodeTestFailed     = "E_TEST_FAILED"   // A scenario failed
	ErrCodeDeterminism    = "E_DETERMINISM"   // A replay diverged from its record
)

// LoadProblemFile loads one problem file. When name is set only that
// problem is returned.
func LoadProblemFile(path, name string) ([]*ir.Problem, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("problem file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing problem file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}
	}

	problems, err := compiler.LoadFile(path)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	if name == "" {
		return problems, nil
	}
	for _, p := range problems {
		if p.Name == name {
			return []*ir.Problem{p}, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeUnknownProblem, Message: fmt.Sprintf("problem %q not defined in %s", name, path)}
}

// LoadProblems loads every problem file under dir. If mode is
// LoadModeFailFast, returns on the first error; otherwise the problems of
// every loadable file are returned together with all errors.
func LoadProblems(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("problems directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing problems directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := compiler.FindProblemFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no problem files found in %s", dir)}}
	}

	result := &LoadResult{
		Files:     make(map[string]string),
		FileCount: len(files),
	}
	var errs []error
	for _, f := range files {
		problems, err := compiler.LoadFile(f)
		if err != nil {
			errs = append(errs, convertCompileError(err, f))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		for _, p := range problems {
			if prev, ok := result.Files[p.Name]; ok {
				dup := &compiler.DuplicateProblemError{Name: p.Name, First: prev, Second: f}
				errs = append(errs, &LoadError{Code: ErrCodeDuplicate, Message: dup.Error()})
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Files[p.Name] = f
			result.Problems = append(result.Problems, p)
		}
	}
	return result, errs
}

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error, path string) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		msg := compileErr.Message
		if compileErr.Field != "" {
			msg = compileErr.Field + ": " + msg
		}
		if compileErr.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, compileErr.Err)
		}
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: msg,
			Pos:     compileErr.Pos,
		}
	}
	var parseErr *ir.ParseError
	if errors.As(err, &parseErr) {
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", path, err),
	}
}
