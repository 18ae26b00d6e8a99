package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/store"
)

func TestHistoryMissingJournal(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "missing.db")

	_, err := execute(t, "history", journal)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)

	_, statErr := os.Stat(journal)
	assert.True(t, os.IsNotExist(statErr), "history must not create a journal")
}

func TestHistoryEmptyJournal(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(journal)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "history", journal)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")

	out, err = execute(t, "history", journal, "--format", "json")
	require.NoError(t, err)
	assert.Empty(t, decode[[]RunSummary](t, out).Data)
}

func TestHistoryListsRunsInOrder(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "prove", trianglesFile, "--problem", "midsegment", "--journal", journal)
	require.NoError(t, err)
	_, err = execute(t, "prove", circumcircleFile, "--journal", journal)
	require.NoError(t, err)

	out, err := execute(t, "history", journal, "--format", "json")
	require.NoError(t, err)
	runs := decode[[]RunSummary](t, out).Data
	require.Len(t, runs, 2)
	assert.Equal(t, "midsegment", runs[0].Problem)
	assert.Equal(t, "circumcircle", runs[1].Problem)
	for _, r := range runs {
		assert.Equal(t, "saturated", r.Status)
		assert.NotEmpty(t, r.Engine)
		assert.Positive(t, r.Iterations)
	}

	text, err := execute(t, "history", journal)
	require.NoError(t, err)
	assert.Contains(t, text, runs[0].ID)
	assert.Contains(t, text, runs[1].ID)
}

func TestHistoryRunDetail(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "prove", circumcircleFile, "--journal", journal, "--format", "json")
	require.NoError(t, err)
	runID := decode[ProveResult](t, out).Data.Problems[0].RunID

	out, err = execute(t, "history", journal, runID, "--format", "json")
	require.NoError(t, err)
	detail := decode[RunDetail](t, out).Data
	assert.Equal(t, runID, detail.Run.ID)
	assert.Empty(t, detail.Snapshot)

	hypotheses := 0
	for i, f := range detail.Facts {
		if i > 0 {
			assert.Greater(t, f.Seq, detail.Facts[i-1].Seq, "facts come back in acceptance order")
		}
		if f.Origin == "hypothesis" {
			hypotheses++
			assert.Empty(t, f.Rule)
		} else {
			assert.Equal(t, "derived", f.Origin)
			assert.NotEmpty(t, f.Rule)
		}
	}
	assert.Equal(t, 2, hypotheses)

	text, err := execute(t, "history", journal, runID)
	require.NoError(t, err)
	assert.Contains(t, text, "hypothesis")
	assert.Contains(t, text, "cong(O,A,O,B)")
}

func TestHistoryErrors(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "runs.db")
	out, err := execute(t, "prove", circumcircleFile, "--journal", journal, "--format", "json")
	require.NoError(t, err)
	runID := decode[ProveResult](t, out).Data.Problems[0].RunID

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"unknown run", []string{"history", journal, "no-such-run"}, "not found"},
		{"no snapshot", []string{"history", journal, runID, "--snapshot"}, "has no snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decode[any](t, out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.message)
		})
	}
}
