package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

func TestWorklist_FIFO(t *testing.T) {
	w := newWorklist()
	w.Push(pending{key: "a", fact: ir.Coll{Points: []ir.Point{0, 1, 2}}})
	w.Push(pending{key: "b", fact: ir.Coll{Points: []ir.Point{0, 1, 3}}})

	p, ok := w.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", p.key)
	p, ok = w.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", p.key)

	_, ok = w.Pop()
	assert.False(t, ok)
}

func TestWorklist_DeduplicatesQueuedKeys(t *testing.T) {
	w := newWorklist()
	assert.True(t, w.Push(pending{key: "a", fact: ir.Midp{M: 0, A: 1, B: 2}}))
	assert.False(t, w.Push(pending{key: "a", fact: ir.Midp{M: 0, A: 2, B: 1}}))
	assert.Equal(t, 1, w.Len())

	w.Pop()
	assert.True(t, w.Push(pending{key: "a", fact: ir.Midp{M: 0, A: 1, B: 2}}), "a popped key may be queued again")
}

func TestWorklist_SortIsStableByKind(t *testing.T) {
	w := newWorklist()
	w.Push(pending{key: "perp", fact: ir.Perp{L1: 0, L2: 1}})
	w.Push(pending{key: "coll1", fact: ir.Coll{Points: []ir.Point{0, 1, 2}}})
	w.Push(pending{key: "cong", fact: ir.Cong{S1: ir.NewSegment(0, 1), S2: ir.NewSegment(2, 3)}})
	w.Push(pending{key: "coll2", fact: ir.Coll{Points: []ir.Point{3, 4, 5}}})
	w.Sort()

	var keys []string
	for w.Len() > 0 {
		p, _ := w.Pop()
		keys = append(keys, p.key)
	}
	assert.Equal(t, []string{"coll1", "coll2", "cong", "perp"}, keys)
}
