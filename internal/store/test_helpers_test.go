package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// createTestStore opens a fresh journal in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func beginTestRun(t *testing.T, s *Store, id, problem string) Run {
	t.Helper()
	r, err := s.BeginRun(context.Background(), Run{ID: id, Problem: problem})
	require.NoError(t, err)
	return r
}

func hypothesis(t *testing.T, line string) Fact {
	t.Helper()
	p, err := ir.ParsePredicate(line)
	require.NoError(t, err)
	return Fact{Predicate: p}
}

func derived(t *testing.T, line, rule string, gen uint64) Fact {
	t.Helper()
	f := hypothesis(t, line)
	f.Rule = rule
	f.Generation = gen
	return f
}
