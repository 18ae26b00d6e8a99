package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/midsegment.yaml")
	require.NoError(t, err)

	assert.Equal(t, "midsegment", s.Name)
	assert.Equal(t, []string{"midp(E,A,B)", "midp(F,A,C)"}, s.Hypotheses)
	require.Len(t, s.Assertions, 5)
	assert.Equal(t, AssertCount, s.Assertions[3].Type)
	assert.Equal(t, 2, s.Assertions[3].AtLeast)
}

func TestLoadScenarioResolvesProblemPath(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/orthocenter.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "problems", "orthocenter.cue"), s.Problem)
}

func TestLoadScenarioSteps(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/incremental.yaml")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"midp(F,A,C)"}}, s.Steps)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: d
hypotheses: ['coll(A,B,C)']
assertion:
  - type: stable
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing name",
			body: "description: d\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: stable}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			body: "name: n\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: stable}]\n",
			want: "description is required",
		},
		{
			name: "no problem",
			body: "name: n\ndescription: d\nassertions: [{type: stable}]\n",
			want: "either problem or hypotheses",
		},
		{
			name: "both problem and hypotheses",
			body: "name: n\ndescription: d\nproblem: x.cue\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: stable}]\n",
			want: "mutually exclusive",
		},
		{
			name: "missing problem file",
			body: "name: n\ndescription: d\nproblem: nowhere.cue\nassertions: [{type: stable}]\n",
			want: "problem file not found",
		},
		{
			name: "bad hypothesis",
			body: "name: n\ndescription: d\nhypotheses: ['cong(A,B)']\nassertions: [{type: stable}]\n",
			want: "hypotheses[0]",
		},
		{
			name: "bad step",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nsteps: [['bogus(A)']]\nassertions: [{type: stable}]\n",
			want: "steps[0][0]",
		},
		{
			name: "no assertions",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\n",
			want: "assertions list is required",
		},
		{
			name: "proves without predicate",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: proves}]\n",
			want: "predicate is required",
		},
		{
			name: "count with unknown kind",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: count, kind: tangent, at_least: 1}]\n",
			want: "assertions[0]",
		},
		{
			name: "count without at_least",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: count, kind: coll}]\n",
			want: "at_least must be positive",
		},
		{
			name: "goals without problem",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: goals}]\n",
			want: "goals requires a problem file",
		},
		{
			name: "fails without code",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: fails}]\n",
			want: "code is required",
		},
		{
			name: "unknown assertion",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nassertions: [{type: trace_order}]\n",
			want: "unknown assertion type",
		},
		{
			name: "negative ceiling",
			body: "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\nmax_iterations: -1\nassertions: [{type: stable}]\n",
			want: "max_iterations",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioGoldenOnly(t *testing.T) {
	path := writeScenario(t, "name: n\ndescription: d\nhypotheses: ['coll(A,B,C)']\ngolden: true\n")
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.True(t, s.Golden)
	assert.Empty(t, s.Assertions)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}
