package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
	"github.com/JiajunSong-Bigai/inference-engine/internal/testutil"
)

func newTestDriver(opts ...Option) *Driver {
	base := []Option{
		WithLogger(testutil.DiscardLogger()),
		WithRunIDGenerator(testutil.NewFixedRunIDGenerator("run-test")),
	}
	return New(nil, append(base, opts...)...)
}

func run(t *testing.T, d *Driver, lines ...string) *Result {
	t.Helper()
	res, err := d.Run(context.Background(), testutil.Predicates(t, lines...))
	require.NoError(t, err)
	return res
}

func proves(t *testing.T, d *Driver, line string) bool {
	t.Helper()
	return d.Prove(testutil.Predicate(t, line))
}

var orthocenter = []string{
	"coll(A,H,D)",
	"coll(B,H,E)",
	"coll(B,D,C)",
	"coll(A,E,C)",
	"coll(C,H,F)",
	"coll(A,F,B)",
	"perp(A,D,B,C)",
	"perp(B,E,A,C)",
}

func TestDriver_Orthocenter(t *testing.T) {
	d := newTestDriver()
	res := run(t, d, orthocenter...)

	assert.True(t, proves(t, d, "cyclic(D,E,H,C)"))
	assert.True(t, proves(t, d, "cyclic(D,E,A,B)"))
	assert.True(t, proves(t, d, "cyclic(H,C,E,D)"), "point order is irrelevant")
	assert.False(t, proves(t, d, "cyclic(A,B,C,H)"))
	assert.Equal(t, res.Generation, d.Database().Generation())

	// Every altitude foot pairs with the orthocenter or a second foot.
	assert.Len(t, d.Database().Circles(), 6)
	for _, q := range []string{
		"cyclic(A,B,D,E)",
		"cyclic(C,D,H,E)",
		"cyclic(A,E,H,F)",
		"cyclic(B,D,H,F)",
		"cyclic(B,C,E,F)",
		"cyclic(A,C,D,F)",
	} {
		assert.True(t, proves(t, d, q), q)
	}
}

func TestDriver_OneHypothesisPerRunMatchesBatch(t *testing.T) {
	batch := newTestDriver()
	batchRes := run(t, batch, orthocenter...)

	steps := New(nil, WithLogger(testutil.DiscardLogger()))
	var stepped []Derivation
	for _, h := range orthocenter {
		stepped = append(stepped, run(t, steps, h).Increased...)
	}

	for _, inc := range batchRes.Increased {
		assert.True(t, steps.Prove(inc.Predicate), "stepped run misses %s", inc.Predicate)
	}
	for _, inc := range stepped {
		assert.True(t, batch.Prove(inc.Predicate), "batch run misses %s", inc.Predicate)
	}
	for _, d := range []*Driver{batch, steps} {
		assert.True(t, proves(t, d, "simtri(A,E,H,B,E,C)"))
		assert.True(t, proves(t, d, "simtri(B,H,D,A,C,D)"))
	}
	assert.Len(t, steps.Database().Circles(), len(batch.Database().Circles()))
}

func TestDriver_GroupMergeReachesRules(t *testing.T) {
	tests := []struct {
		name       string
		hypotheses []string
		want       []string
	}{
		{
			name:       "angle chain gives parallel",
			hypotheses: []string{"eqangle(A,B,P,Q,E,F,G,H)", "eqangle(E,F,G,H,C,D,P,Q)"},
			want:       []string{"eqangle(A,B,P,Q,C,D,P,Q)", "para(A,B,C,D)"},
		},
		{
			name:       "parallel chain through a shared point gives collinear",
			hypotheses: []string{"para(A,B,C,D)", "para(C,D,A,E)"},
			want:       []string{"para(A,B,A,E)", "coll(A,B,E)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDriver()
			run(t, d, tt.hypotheses...)
			for _, w := range tt.want {
				assert.True(t, proves(t, d, w), w)
			}
		})
	}
}

func TestDriver_LaterRunReachesStoredFacts(t *testing.T) {
	tests := []struct {
		name  string
		first []string
		later []string
		want  string
	}{
		{
			name:  "line grows under a perpendicular",
			first: []string{"perp(X,M,A,B)", "midp(M,A,B)"},
			later: []string{"coll(X,M,O)"},
			want:  "cong(O,A,O,B)",
		},
		{
			name:  "midpoint arrives after the perpendicular",
			first: []string{"perp(X,M,A,B)"},
			later: []string{"midp(M,A,B)"},
			want:  "cong(X,A,X,B)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := newTestDriver()
			run(t, batch, append(append([]string(nil), tt.first...), tt.later...)...)
			require.True(t, proves(t, batch, tt.want))

			d := New(nil, WithLogger(testutil.DiscardLogger()))
			run(t, d, tt.first...)
			assert.False(t, proves(t, d, tt.want))
			run(t, d, tt.later...)
			assert.True(t, proves(t, d, tt.want))

			res := run(t, d)
			assert.Zero(t, res.Iterations, "saturated after the later run")
		})
	}
}

func TestDriver_Midsegment(t *testing.T) {
	d := newTestDriver()
	res := run(t, d, "midp(E,A,B)", "midp(F,A,C)")

	assert.True(t, proves(t, d, "para(E,F,B,C)"))
	assert.True(t, proves(t, d, "cong(E,A,E,B)"))
	assert.False(t, proves(t, d, "coll(E,F,B)"))
	assert.False(t, proves(t, d, "coll(E,F,C)"))
	assert.False(t, proves(t, d, "coll(A,B,C)"))

	var hypotheses int
	for _, inc := range res.Increased {
		if inc.Hypothesis() {
			hypotheses++
		}
	}
	assert.Equal(t, 2, hypotheses)
}

func TestDriver_SideAngleSide(t *testing.T) {
	d := newTestDriver()
	run(t, d,
		"eqangle(A,B,B,C,P,Q,Q,R)",
		"cong(A,B,P,Q)",
		"cong(B,C,Q,R)",
	)

	assert.True(t, proves(t, d, "contri(A,B,C,P,Q,R)"))
	assert.True(t, proves(t, d, "cong(A,C,P,R)"))
	assert.False(t, proves(t, d, "contri(A,C,B,P,Q,R)"), "reflections are not the same correspondence")
	assert.False(t, proves(t, d, "cong(A,B,B,C)"))
}

func TestDriver_Circumcircle(t *testing.T) {
	d := newTestDriver()
	run(t, d, "cong(O,A,O,B)", "cong(O,A,O,C)")

	assert.True(t, proves(t, d, "circle(O,A,B,C)"))
	assert.True(t, proves(t, d, "cong(O,B,O,C)"))
	assert.False(t, proves(t, d, "circle(A,O,B,C)"))
}

func TestDriver_NegativeQueries(t *testing.T) {
	d := newTestDriver()
	run(t, d, "coll(A,B,C)")

	for _, q := range []string{
		"para(A,B,C,D)",
		"perp(A,B,B,C)",
		"cong(A,B,C,D)",
		"coll(X,Y,Z)",
		"eqratio(A,B,B,C,X,Y,Y,Z)",
		"simtri(A,B,C,X,Y,Z)",
	} {
		assert.False(t, proves(t, d, q), q)
	}
	assert.True(t, proves(t, d, "coll(C,A,B)"))
}

func TestDriver_ProveHasNoSideEffects(t *testing.T) {
	d := newTestDriver()
	run(t, d, "midp(E,A,B)", "midp(F,A,C)")
	before := d.Database().Stats()

	proves(t, d, "para(X,Y,Z,W)")
	proves(t, d, "eqangle(A,B,B,C,E,F,F,A)")

	assert.Equal(t, before, d.Database().Stats())
}

func TestDriver_EmptyRunIsFixedPoint(t *testing.T) {
	d := newTestDriver()
	run(t, d, "midp(E,A,B)", "midp(F,A,C)")
	stats := d.Database().Stats()
	gen := d.Database().Generation()

	res := run(t, d)
	assert.Empty(t, res.Increased)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, gen, res.Generation)
	assert.Equal(t, stats, d.Database().Stats())
}

func TestDriver_DuplicateHypothesesAddedOnce(t *testing.T) {
	d := newTestDriver()
	res := run(t, d, "coll(A,B,C)", "coll(C,B,A)", "coll(A,B,C)")

	require.Len(t, res.Increased, 1)
	assert.True(t, res.Increased[0].Hypothesis())
	assert.Equal(t, uint64(1), res.Generation)
}

func TestDriver_IncrementalRuns(t *testing.T) {
	d := newTestDriver()
	run(t, d, "midp(E,A,B)")
	assert.False(t, proves(t, d, "para(E,F,B,C)"))

	run(t, d, "midp(F,A,C)")
	assert.True(t, proves(t, d, "para(E,F,B,C)"))
}

func TestDriver_IncreasedInKindOrder(t *testing.T) {
	d := newTestDriver()
	res := run(t, d, "midp(E,A,B)", "midp(F,A,C)")

	for i := 1; i < len(res.Increased); i++ {
		prev, cur := res.Increased[i-1].Fact.Kind(), res.Increased[i].Fact.Kind()
		assert.False(t, cur.Less(prev), "%s before %s", prev, cur)
	}
	for _, inc := range res.Increased {
		assert.NoError(t, inc.Predicate.Validate())
	}
}

func TestDriver_IterationLimit(t *testing.T) {
	d := newTestDriver(WithMaxIterations(5))
	res, err := d.Run(context.Background(), testutil.Predicates(t, orthocenter...))

	require.Error(t, err)
	assert.True(t, IsIterationLimitError(err))
	le, ok := AsIterationLimitError(err)
	require.True(t, ok)
	assert.Equal(t, 5, le.Limit)

	require.NotNil(t, res)
	assert.Equal(t, 5, res.Iterations)
	assert.True(t, proves(t, d, "coll(A,H,D)"), "facts accepted before the limit stay")

	var buf bytes.Buffer
	require.NoError(t, d.Database().Dump(&buf), "the database stays usable")
}

func TestDriver_ContextCancelled(t *testing.T) {
	d := newTestDriver()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := d.Run(ctx, testutil.Predicates(t, orthocenter...))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res)
	assert.Zero(t, res.Iterations)
	assert.True(t, proves(t, d, "perp(A,D,B,C)"), "hypotheses are seeded before the loop")
}

func TestDriver_InvalidHypothesis(t *testing.T) {
	d := newTestDriver()
	bad := ir.Predicate{Kind: ir.KindCong, Points: []string{"A", "B"}}

	_, err := d.Run(context.Background(), []ir.Predicate{bad})
	require.Error(t, err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidPredicate, re.Code)
	assert.True(t, ir.IsArityError(err))
	assert.Empty(t, d.Database().Points(), "nothing is interned when validation fails")
}

func TestDriver_LogsRunLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	d := New(nil,
		WithLogger(logger),
		WithRunIDGenerator(NewFixedGenerator("run-log")),
	)

	_, err := d.Run(context.Background(), testutil.Predicates(t, "coll(A,B,C)"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run started")
	assert.Contains(t, out, "run finished")
	assert.Contains(t, out, "run_id=run-log")
}
