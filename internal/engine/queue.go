package engine

import (
	"slices"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// pending is a queued fact with the key it was queued under and the rule
// that proposed it ("" for hypotheses).
type pending struct {
	key  string
	fact ir.Fact
	rule string
}

// worklist is the driver's FIFO of facts awaiting expansion. Pushes are
// deduplicated against the facts currently queued, and the list is kept in
// kind priority order with ties in arrival order.
//
// The worklist is unbounded; cascading rules may enqueue arbitrarily many
// conclusions. It is used from the driver goroutine only.
type worklist struct {
	items  []pending
	queued map[string]struct{}
}

func newWorklist() *worklist {
	return &worklist{
		items:  make([]pending, 0, 64),
		queued: make(map[string]struct{}),
	}
}

// Push appends p unless a fact with the same key is already queued.
func (w *worklist) Push(p pending) bool {
	if _, ok := w.queued[p.key]; ok {
		return false
	}
	w.queued[p.key] = struct{}{}
	w.items = append(w.items, p)
	return true
}

// Pop removes and returns the front item.
func (w *worklist) Pop() (pending, bool) {
	if len(w.items) == 0 {
		return pending{}, false
	}
	p := w.items[0]
	w.items[0] = pending{}
	w.items = w.items[1:]
	delete(w.queued, p.key)
	return p, true
}

// Sort restores kind priority order. It is stable, so facts of one kind
// keep their arrival order.
func (w *worklist) Sort() {
	slices.SortStableFunc(w.items, func(a, b pending) int {
		return a.fact.Kind().Compare(b.fact.Kind())
	})
}

// Len returns the number of queued facts.
func (w *worklist) Len() int {
	return len(w.items)
}
