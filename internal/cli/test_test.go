package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenariosDir = filepath.Join("testdata", "scenarios")

func TestTestCommandMissingArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(t, "test", t.TempDir(), "--format", "json")
	require.NoError(t, err)

	resp := decode[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.NotNil(t, resp.Data.Scenarios)
}

func TestTestCommandPasses(t *testing.T) {
	out, err := execute(t, "test", scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ circumcircle")
	assert.Contains(t, out, "✓ midsegment")
	assert.Contains(t, out, "✓ single-line")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandParallelKeepsOrder(t *testing.T) {
	out, err := execute(t, "test", scenariosDir, "--parallel", "3", "--format", "json")
	require.NoError(t, err)

	resp := decode[TestResult](t, out)
	require.Len(t, resp.Data.Scenarios, 3)
	var names []string
	for _, s := range resp.Data.Scenarios {
		names = append(names, s.Name)
		assert.True(t, s.Pass, s.Name)
	}
	assert.Equal(t, []string{"circumcircle", "midsegment", "single-line"}, names)
	assert.Equal(t, "match", resp.Data.Scenarios[2].Golden)
}

func TestTestCommandFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   int
	}{
		{"mid*", 1},
		{"*", 3},
		{"single_line", 1},
		{"nothing*", 0},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			out, err := execute(t, "test", scenariosDir, "--filter", tt.filter, "--format", "json")
			require.NoError(t, err)
			assert.Equal(t, tt.want, decode[TestResult](t, out).Data.Total)
		})
	}
}

func TestTestCommandBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad filter", []string{"--filter", "["}},
		{"zero parallel", []string{"--parallel", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"test", scenariosDir}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: "Collinearity does not spread to unrelated points"
hypotheses:
  - coll(A,B,C)
assertions:
  - type: proves
    predicate: coll(A,B,D)
`)
	writeFile(t, dir, "broken.yaml", `name: broken
hypotheses:
  - coll(A,B,C)
`)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 scenario(s) failed")

	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "coll(A,B,D)")
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
	assert.Contains(t, out, "Test Summary: 0 passed, 2 failed, 2 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: "Collinearity does not spread to unrelated points"
hypotheses:
  - coll(A,B,C)
assertions:
  - type: proves
    predicate: coll(A,B,D)
`)

	out, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)

	resp := decode[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := t.TempDir()
	scenario, err := os.ReadFile(filepath.Join(scenariosDir, "single_line.yaml"))
	require.NoError(t, err)
	writeFile(t, dir, "single_line.yaml", string(scenario))

	// Missing golden file fails.
	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "missing (run with --update")

	// --update writes it.
	out, err = execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ single-line (golden updated)")

	written, err := os.ReadFile(filepath.Join(dir, "golden", "single-line.golden"))
	require.NoError(t, err)
	committed, err := os.ReadFile(filepath.Join(scenariosDir, "golden", "single-line.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(committed), string(written))

	// And now it matches.
	_, err = execute(t, "test", dir)
	require.NoError(t, err)

	// A stale golden file fails.
	writeFile(t, dir, filepath.Join("golden", "single-line.golden"), `{"scenario":"single-line"}`)
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "do not match golden file")
}
