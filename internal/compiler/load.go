package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Problem file extensions.
const (
	ExtCUE  = ".cue"
	ExtText = ".txt"
)

// DuplicateProblemError is returned when two files define the same
// problem name.
type DuplicateProblemError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateProblemError) Error() string {
	return fmt.Sprintf("problem %q defined in both %s and %s", e.Name, e.First, e.Second)
}

// LoadFile reads problems from one file. A .cue file may define several
// problems under `problem:`; a .txt file is one problem named after the
// file, with goals prefixed by '?'.
func LoadFile(path string) ([]*ir.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem file: %w", err)
	}

	switch filepath.Ext(path) {
	case ExtText:
		name := strings.TrimSuffix(filepath.Base(path), ExtText)
		p, err := ir.ParseProblemText(name, strings.NewReader(string(data)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []*ir.Problem{&p}, nil
	case ExtCUE:
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		probVal := v.LookupPath(cue.ParsePath("problem"))
		if !probVal.Exists() {
			return nil, &CompileError{Field: "problem", Message: "no problems defined", Pos: v.Pos()}
		}
		return CompileProblems(probVal)
	default:
		return nil, fmt.Errorf("unsupported problem file %s: want %s or %s", path, ExtCUE, ExtText)
	}
}

// FindProblemFiles walks dir and returns every .cue and .txt path, sorted.
func FindProblemFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ExtCUE, ExtText:
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// LoadDir loads every problem file under dir. Problem names must be unique
// across files.
func LoadDir(dir string) ([]*ir.Problem, error) {
	files, err := FindProblemFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var out []*ir.Problem
	origin := make(map[string]string)
	for _, f := range files {
		ps, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			if prev, ok := origin[p.Name]; ok {
				return nil, &DuplicateProblemError{Name: p.Name, First: prev, Second: f}
			}
			origin[p.Name] = f
			out = append(out, p)
		}
	}
	return out, nil
}
