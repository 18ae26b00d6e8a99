package database

import "sync/atomic"

// Generation is the database's monotonic change counter.
//
// The driver bumps it once per accepted fact. Memo entries stamped with an
// older generation are stale: new premises may enable rules that
// previously failed to fire.
//
// Allocating lazy two-point lines or one-segment congruence classes does
// not bump it; those allocations add no facts.
type Generation struct {
	n atomic.Uint64
}

// Next advances the generation and returns the new value.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current returns the generation without advancing it.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// Version identifies everything rules read. Besides the generation it
// counts allocated lines and congruence classes: a rule that names a new
// line makes it visible to rules that range over all lines.
type Version struct {
	Generation uint64
	Lines      int
	Congs      int
}

// Version returns the current version.
func (db *Database) Version() Version {
	return Version{
		Generation: db.gen.Current(),
		Lines:      len(db.lines.parent),
		Congs:      len(db.congs.parent),
	}
}
