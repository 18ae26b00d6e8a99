package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileCUE(t *testing.T) {
	ps, err := LoadFile("testdata/problems/triangles.cue")
	require.NoError(t, err)
	require.Len(t, ps, 2)

	assert.Equal(t, "orthocenter", ps[0].Name)
	assert.Len(t, ps[0].Hypotheses, 8)
	assert.Len(t, ps[0].Goals, 2)
	assert.Equal(t, "midsegment", ps[1].Name)
}

func TestLoadFileText(t *testing.T) {
	ps, err := LoadFile("testdata/problems/circumcircle.txt")
	require.NoError(t, err)
	require.Len(t, ps, 1)

	p := ps[0]
	assert.Equal(t, "circumcircle", p.Name)
	assert.Len(t, p.Hypotheses, 2)
	require.Len(t, p.Goals, 2)
	assert.Equal(t, "circle(O,A,B,C)", p.Goals[0].String())
}

func TestLoadFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadFileCUESyntaxErrorHasPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte("problem: p: {\n\thypotheses: [\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, ce.Error(), "bad.cue")
}

func TestLoadFileCUENoProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cue")
	require.NoError(t, os.WriteFile(path, []byte("other: 1\n"), 0o644))

	_, err := LoadFile(path)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "problem", ce.Field)
}

func TestLoadDir(t *testing.T) {
	ps, err := LoadDir("testdata/problems")
	require.NoError(t, err)

	var names []string
	for _, p := range ps {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"circumcircle", "orthocenter", "midsegment"}, names)
}

func TestLoadDirDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"),
		[]byte(`problem: p: { hypotheses: ["coll(A,B,C)"] }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.txt"),
		[]byte("coll(A,B,C)\n"), 0o644))

	_, err := LoadDir(dir)
	var dup *DuplicateProblemError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "p", dup.Name)
}
