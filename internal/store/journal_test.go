package store

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

func TestBeginRun_AssignsLogicalSequence(t *testing.T) {
	s := createTestStore(t)

	r1 := beginTestRun(t, s, "run-1", "orthocenter")
	r2 := beginTestRun(t, s, "run-2", "midsegment")

	assert.Equal(t, int64(1), r1.StartedSeq)
	assert.Equal(t, int64(2), r2.StartedSeq)
	assert.Equal(t, StatusRunning, r1.Status)
	assert.Equal(t, ir.EngineVersion, r1.EngineVersion)
}

func TestBeginRun_Idempotent(t *testing.T) {
	s := createTestStore(t)

	first := beginTestRun(t, s, "run-1", "orthocenter")
	again := beginTestRun(t, s, "run-1", "renamed")

	assert.Equal(t, first, again, "second begin keeps the first row")

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestBeginRun_EmptyID(t *testing.T) {
	s := createTestStore(t)
	_, err := s.BeginRun(context.Background(), Run{Problem: "p"})
	assert.Error(t, err)
}

func TestFinishRun(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	beginTestRun(t, s, "ok", "a")
	beginTestRun(t, s, "bad", "b")

	require.NoError(t, s.FinishRun(ctx, "ok", Outcome{Iterations: 12, Generation: 7}))
	require.NoError(t, s.FinishRun(ctx, "bad", Outcome{Iterations: 5, Err: errors.New("iteration limit")}))

	ok, err := s.ReadRun(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, StatusSaturated, ok.Status)
	assert.Equal(t, 12, ok.Iterations)
	assert.Equal(t, uint64(7), ok.Generation)
	assert.Empty(t, ok.Error)

	bad, err := s.ReadRun(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, bad.Status)
	assert.Equal(t, "iteration limit", bad.Error)
}

func TestFinishRun_UnknownRun(t *testing.T) {
	s := createTestStore(t)
	err := s.FinishRun(context.Background(), "missing", Outcome{})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_EmptyJournal(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestWriteFacts_RoundTripsInOrder(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", "midsegment")

	n, err := s.WriteFacts(ctx, "run-1", []Fact{
		hypothesis(t, "midp(E,A,B)"),
		hypothesis(t, "midp(F,A,C)"),
		derived(t, "para(E,F,B,C)", "D44", 5),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	facts, err := s.ReadFacts(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, facts, 3)

	assert.Equal(t, int64(1), facts[0].Seq)
	assert.Equal(t, OriginHypothesis, facts[0].Origin)
	assert.Equal(t, "midp(E,A,B)", facts[0].Predicate.String())

	last := facts[2]
	assert.Equal(t, int64(3), last.Seq)
	assert.Equal(t, OriginDerived, last.Origin)
	assert.Equal(t, "D44", last.Rule)
	assert.Equal(t, uint64(5), last.Generation)
	assert.Equal(t, ir.MustHashPredicate(last.Predicate), last.Hash)
}

func TestWriteFacts_IgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", "p")

	n, err := s.WriteFacts(ctx, "run-1", []Fact{
		hypothesis(t, "coll(A,B,C)"),
		hypothesis(t, "coll(A,B,C)"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.WriteFacts(ctx, "run-1", []Fact{
		hypothesis(t, "coll(A,B,C)"),
		hypothesis(t, "perp(A,B,C,D)"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	facts, err := s.ReadFacts(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, int64(2), facts[1].Seq, "seq stays contiguous across batches")
}

func TestWriteFacts_SameFactInTwoRuns(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", "p")
	beginTestRun(t, s, "run-2", "p")

	for _, id := range []string{"run-1", "run-2"} {
		n, err := s.WriteFacts(ctx, id, []Fact{hypothesis(t, "coll(A,B,C)")})
		require.NoError(t, err)
		assert.Equal(t, 1, n, id)
	}
}

func TestWriteFacts_UnknownRun(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteFacts(context.Background(), "missing", []Fact{hypothesis(t, "coll(A,B,C)")})
	assert.Error(t, err, "foreign key rejects facts of an unknown run")
}

func TestWriteFacts_InvalidPredicate(t *testing.T) {
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", "p")

	bad := Fact{Predicate: ir.Predicate{Kind: ir.KindCong, Points: []string{"A", "B"}}}
	_, err := s.WriteFacts(context.Background(), "run-1", []Fact{bad})
	require.Error(t, err)
	assert.True(t, ir.IsArityError(err))

	facts, err := s.ReadFacts(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Empty(t, facts, "a failed batch writes nothing")
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", "p")

	raw := bytes.Repeat([]byte("para: {AB, CD}\n"), 200)
	require.NoError(t, s.WriteSnapshot(ctx, "run-1", raw))

	got, ok, err := s.ReadSnapshot(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, raw, got)

	var stored int
	require.NoError(t, s.db.QueryRow("SELECT length(data) FROM snapshots WHERE run_id = ?", "run-1").Scan(&stored))
	assert.Less(t, stored, len(raw), "snapshot is compressed")
}

func TestSnapshot_Replace(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", "p")

	require.NoError(t, s.WriteSnapshot(ctx, "run-1", []byte("first")))
	require.NoError(t, s.WriteSnapshot(ctx, "run-1", []byte("second")))

	got, ok, err := s.ReadSnapshot(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(got))
}

func TestSnapshot_Missing(t *testing.T) {
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", "p")

	got, ok, err := s.ReadSnapshot(context.Background(), "run-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestDecompress_UnknownCodec(t *testing.T) {
	_, err := decompress("lz4", []byte{1, 2, 3})
	assert.Error(t, err)
}
