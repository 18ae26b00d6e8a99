package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Predicates parses one predicate per argument, e.g. "coll(A,B,C)".
func Predicates(t testing.TB, lines ...string) []ir.Predicate {
	t.Helper()
	out := make([]ir.Predicate, len(lines))
	for i, line := range lines {
		p, err := ir.ParsePredicate(line)
		require.NoError(t, err, "predicate %q", line)
		out[i] = p
	}
	return out
}

// Predicate parses a single predicate.
func Predicate(t testing.TB, line string) ir.Predicate {
	t.Helper()
	return Predicates(t, line)[0]
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
