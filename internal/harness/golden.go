package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison. Only
// the facts, counters and error code are included; assertion failures are
// not.
func Snapshot(result *Result) ([]byte, error) {
	increased := make([]any, len(result.Increased))
	for i, inc := range result.Increased {
		m := map[string]any{
			"step":      inc.Step,
			"predicate": inc.Predicate,
		}
		if inc.Rule != "" {
			m["rule"] = inc.Rule
		}
		increased[i] = m
	}
	snap := map[string]any{
		"scenario":   result.Name,
		"increased":  increased,
		"iterations": result.Iterations,
		"generation": int64(result.Generation),
	}
	if result.ErrorCode != "" {
		snap["error_code"] = result.ErrorCode
	}
	data, err := ir.MarshalCanonical(snap)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", result.Name, err)
	}
	return data, nil
}

// GoldenPath returns the golden file of a scenario file:
// <scenario dir>/golden/<scenario name>.golden.
func GoldenPath(scenarioFile string, scenario *Scenario) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", scenario.Name+".golden")
}

// CompareGolden reports whether the result matches the golden file at path.
func CompareGolden(path string, result *Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read golden file: %w", err)
	}
	got, err := Snapshot(result)
	if err != nil {
		return false, err
	}
	return string(want) == string(got), nil
}

// UpdateGolden writes the result snapshot to path, creating the directory.
func UpdateGolden(path string, result *Result) error {
	data, err := Snapshot(result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

// AssertGolden compares a result against testdata/golden/<name>.golden
// using goldie. Regenerate with:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, result *Result) {
	t.Helper()
	data, err := Snapshot(result)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, result.Name, data)
}
