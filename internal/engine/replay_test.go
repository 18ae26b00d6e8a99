package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/testutil"
)

func TestReplay_Deterministic(t *testing.T) {
	hyps := testutil.Predicates(t, orthocenter...)
	first := run(t, newTestDriver(), orthocenter...)

	// Replay many times; every rerun must agree with the first run.
	for i := 0; i < 3; i++ {
		res, div, err := Replay(context.Background(), hyps, Journaled(first.Increased),
			WithLogger(testutil.DiscardLogger()))
		require.NoError(t, err)
		assert.Nil(t, div, "replay %d diverged: %v", i, div)
		assert.Equal(t, first.Iterations, res.Iterations)
		assert.Equal(t, first.Generation, res.Generation)
	}
}

func TestReplay_IterationLimitIsPartOfTheRecord(t *testing.T) {
	hyps := testutil.Predicates(t, orthocenter...)
	d := newTestDriver(WithMaxIterations(6))
	first, err := d.Run(context.Background(), hyps)
	require.True(t, IsIterationLimitError(err))

	res, div, err := Replay(context.Background(), hyps, Journaled(first.Increased),
		WithLogger(testutil.DiscardLogger()), WithMaxIterations(6))
	require.NoError(t, err)
	assert.Nil(t, div)
	assert.Equal(t, 6, res.Iterations)

	// A larger ceiling derives past the recorded end.
	_, div, err = Replay(context.Background(), hyps, Journaled(first.Increased),
		WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	require.NotNil(t, div)
	assert.Empty(t, div.Recorded)
	assert.Contains(t, div.String(), "replay accepted extra")
}

func TestReplay_DetectsDivergence(t *testing.T) {
	hyps := testutil.Predicates(t, "midp(E,A,B)", "midp(F,A,C)")
	first := run(t, newTestDriver(), "midp(E,A,B)", "midp(F,A,C)")
	recorded := Journaled(first.Increased)
	require.Greater(t, len(recorded), 3)

	tampered := append([]Derivation(nil), recorded...)
	tampered[2].Rule = "r99"

	_, div, err := Replay(context.Background(), hyps, tampered, WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	require.NotNil(t, div)
	assert.Equal(t, 2, div.Index)
	assert.Contains(t, div.Recorded, "r99")
	assert.NotContains(t, div.Replayed, "r99")
}

func TestReplay_InvalidHypothesis(t *testing.T) {
	hyps := testutil.Predicates(t, "coll(A,B,C)")
	hyps[0].Points = hyps[0].Points[:2]

	_, _, err := Replay(context.Background(), hyps, nil, WithLogger(testutil.DiscardLogger()))
	require.Error(t, err)
	assert.False(t, IsIterationLimitError(err))
}

func TestJournaled(t *testing.T) {
	p := testutil.Predicate(t, "coll(A,B,C)")
	q := testutil.Predicate(t, "para(A,B,C,D)")
	in := []Derivation{
		{Generation: 1, Predicate: p},
		{Generation: 2, Rule: "r01", Predicate: q},
		{Generation: 3, Rule: "r02", Predicate: p},
	}

	out := Journaled(in)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(1), out[0].Generation, "first occurrence wins")
	assert.Equal(t, "r01", out[1].Rule)
}

func TestCompare(t *testing.T) {
	p := testutil.Predicate(t, "coll(A,B,C)")
	q := testutil.Predicate(t, "para(A,B,C,D)")
	a := Derivation{Generation: 1, Predicate: p}
	b := Derivation{Generation: 2, Rule: "r01", Predicate: q}

	tests := []struct {
		name      string
		recorded  []Derivation
		replayed  []Derivation
		wantIndex int
		wantNil   bool
	}{
		{"equal", []Derivation{a, b}, []Derivation{a, b}, 0, true},
		{"both empty", nil, nil, 0, true},
		{"replay short", []Derivation{a, b}, []Derivation{a}, 1, false},
		{"replay long", []Derivation{a}, []Derivation{a, b}, 1, false},
		{"swapped", []Derivation{a, b}, []Derivation{b, a}, 0, false},
		{"generation differs", []Derivation{a}, []Derivation{{Generation: 5, Predicate: p}}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			div := Compare(tt.recorded, tt.replayed)
			if tt.wantNil {
				assert.Nil(t, div)
				return
			}
			require.NotNil(t, div)
			assert.Equal(t, tt.wantIndex, div.Index)
		})
	}
}
