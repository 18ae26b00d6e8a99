package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

func compileString(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v
}

func TestCompileProblemBasic(t *testing.T) {
	v := compileString(t, `
		problem: midsegment: {
			hypotheses: ["midp(E,A,B)", "midp(F,A,C)"]
			goals: ["para(E,F,B,C)"]
		}
	`)

	p, err := CompileProblem(v.LookupPath(cue.ParsePath("problem.midsegment")))
	require.NoError(t, err)

	assert.Equal(t, "midsegment", p.Name)
	require.Len(t, p.Hypotheses, 2)
	assert.Equal(t, ir.MustPredicate(ir.KindMidp, "E", "A", "B"), p.Hypotheses[0])
	require.Len(t, p.Goals, 1)
	assert.Equal(t, "para(E,F,B,C)", p.Goals[0].String())
}

func TestCompileProblemQuotedName(t *testing.T) {
	v := compileString(t, `
		problem: "nine-point": {
			hypotheses: ["coll(A,B,C)"]
		}
	`)

	p, err := CompileProblem(v.LookupPath(cue.MakePath(cue.Str("problem"), cue.Str("nine-point"))))
	require.NoError(t, err)
	assert.Equal(t, "nine-point", p.Name)
	assert.Empty(t, p.Goals)
}

func TestCompileProblemMissingHypotheses(t *testing.T) {
	v := compileString(t, `
		problem: bad: {
			goals: ["coll(A,B,C)"]
		}
	`)

	_, err := CompileProblem(v.LookupPath(cue.ParsePath("problem.bad")))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "hypotheses", ce.Field)
	assert.True(t, ce.Pos.IsValid())
}

func TestCompileProblemNotAList(t *testing.T) {
	v := compileString(t, `
		problem: bad: {
			hypotheses: "coll(A,B,C)"
		}
	`)

	_, err := CompileProblem(v.LookupPath(cue.ParsePath("problem.bad")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "hypotheses", ce.Field)
	assert.Contains(t, ce.Message, "list")
}

func TestCompileProblemNonStringEntry(t *testing.T) {
	v := compileString(t, `
		problem: bad: {
			hypotheses: ["coll(A,B,C)", 42]
		}
	`)

	_, err := CompileProblem(v.LookupPath(cue.ParsePath("problem.bad")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "hypotheses[1]", ce.Field)
}

func TestCompileProblemBadPredicateKeepsPosition(t *testing.T) {
	v := compileString(t, `problem: bad: {
	hypotheses: [
		"coll(A,B,C)",
		"cong(A,B)",
	]
}
`)

	_, err := CompileProblem(v.LookupPath(cue.ParsePath("problem.bad")))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "hypotheses[1]", ce.Field)
	require.True(t, ce.Pos.IsValid())
	assert.Equal(t, 4, ce.Pos.Line())
	assert.True(t, ir.IsArityError(err), "the parse error is wrapped")
}

func TestCompileProblemUnknownKind(t *testing.T) {
	v := compileString(t, `
		problem: bad: {
			hypotheses: ["tangent(A,B)"]
		}
	`)

	_, err := CompileProblem(v.LookupPath(cue.ParsePath("problem.bad")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "hypotheses[0]", ce.Field)
	assert.Contains(t, ce.Message, "tangent")
}

func TestCompileProblems(t *testing.T) {
	v := compileString(t, `
		problem: first: { hypotheses: ["coll(A,B,C)"] }
		problem: second: { hypotheses: ["perp(A,B,C,D)"], goals: ["perp(C,D,A,B)"] }
	`)

	ps, err := CompileProblems(v.LookupPath(cue.ParsePath("problem")))
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "first", ps[0].Name)
	assert.Equal(t, "second", ps[1].Name)
}

func TestCompileProblemsStopsAtFirstError(t *testing.T) {
	v := compileString(t, `
		problem: ok: { hypotheses: ["coll(A,B,C)"] }
		problem: bad: { goals: [] }
	`)

	_, err := CompileProblems(v.LookupPath(cue.ParsePath("problem")))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "hypotheses", ce.Field)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "goals[0]", Message: "boom"}
	assert.Equal(t, "goals[0]: boom", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
