package database

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// lineStore is a union-find over line ids. Only representatives own a
// point set; byPoint indexes representatives by the points they contain.
//
// Invariant: no two representatives share two or more points.
type lineStore struct {
	parent  []ir.LineID
	points  []*roaring.Bitmap
	byPoint map[ir.Point]*roaring.Bitmap
}

func newLineStore() *lineStore {
	return &lineStore{byPoint: make(map[ir.Point]*roaring.Bitmap)}
}

func (s *lineStore) find(l ir.LineID) ir.LineID {
	root := l
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for s.parent[l] != root {
		next := s.parent[l]
		s.parent[l] = root
		l = next
	}
	return root
}

func (s *lineStore) valid(l ir.LineID) bool {
	return int(l) < len(s.parent)
}

func (s *lineStore) linesThrough(p ir.Point) *roaring.Bitmap {
	bm, ok := s.byPoint[p]
	if !ok {
		bm = roaring.New()
		s.byPoint[p] = bm
	}
	return bm
}

// lookup returns the line containing both points. A single point
// resolves to the lowest line through it.
func (s *lineStore) lookup(a, b ir.Point) (ir.LineID, bool) {
	la, ok := s.byPoint[a]
	if !ok || la.IsEmpty() {
		return 0, false
	}
	if a == b {
		return ir.LineID(la.Minimum()), true
	}
	lb, ok := s.byPoint[b]
	if !ok {
		return 0, false
	}
	both := roaring.And(la, lb)
	if both.IsEmpty() {
		return 0, false
	}
	return ir.LineID(both.Minimum()), true
}

// create allocates a new representative holding pts. Callers run close
// afterwards if pts may overlap an existing line.
func (s *lineStore) create(pts ...ir.Point) ir.LineID {
	id := ir.LineID(len(s.parent))
	s.parent = append(s.parent, id)
	bm := roaring.New()
	s.points = append(s.points, bm)
	for _, p := range pts {
		bm.Add(uint32(p))
		s.linesThrough(p).Add(uint32(id))
	}
	return id
}

func (s *lineStore) add(l ir.LineID, pts ...ir.Point) {
	l = s.find(l)
	for _, p := range pts {
		if s.points[l].CheckedAdd(uint32(p)) {
			s.linesThrough(p).Add(uint32(l))
		}
	}
}

// merge absorbs the larger id into the smaller and returns the survivor.
func (s *lineStore) merge(a, b ir.LineID) ir.LineID {
	a, b = s.find(a), s.find(b)
	if a == b {
		return a
	}
	if b < a {
		a, b = b, a
	}
	it := s.points[b].Iterator()
	for it.HasNext() {
		p := ir.Point(it.Next())
		through := s.byPoint[p]
		through.Remove(uint32(b))
		through.Add(uint32(a))
	}
	s.points[a].Or(s.points[b])
	s.points[b] = nil
	s.parent[b] = a
	return a
}

// close merges l with every line sharing two or more of its points, until
// no such line remains. It reports whether any merge happened.
func (s *lineStore) close(l ir.LineID) (ir.LineID, bool) {
	l = s.find(l)
	merged := false
	for {
		other, ok := s.overlapping(l)
		if !ok {
			return l, merged
		}
		l = s.merge(l, other)
		merged = true
	}
}

func (s *lineStore) overlapping(l ir.LineID) (ir.LineID, bool) {
	candidates := roaring.New()
	it := s.points[l].Iterator()
	for it.HasNext() {
		candidates.Or(s.byPoint[ir.Point(it.Next())])
	}
	candidates.Remove(uint32(l))
	cit := candidates.Iterator()
	for cit.HasNext() {
		other := ir.LineID(cit.Next())
		if s.points[l].AndCardinality(s.points[other]) >= 2 {
			return other, true
		}
	}
	return 0, false
}

// containing returns a representative holding at least two of pts.
func (s *lineStore) containing(pts []ir.Point) (ir.LineID, bool) {
	counts := make(map[uint32]int)
	seen := make(map[ir.Point]bool)
	for _, p := range pts {
		if seen[p] {
			continue
		}
		seen[p] = true
		bm, ok := s.byPoint[p]
		if !ok {
			continue
		}
		it := bm.Iterator()
		for it.HasNext() {
			counts[it.Next()]++
		}
	}
	best, found := uint32(0), false
	for id, n := range counts {
		if n >= 2 && (!found || id < best) {
			best, found = id, true
		}
	}
	return ir.LineID(best), found
}

func (s *lineStore) roots() []ir.LineID {
	var out []ir.LineID
	for i, p := range s.parent {
		if ir.LineID(i) == p {
			out = append(out, p)
		}
	}
	return out
}

func (s *lineStore) pointsOf(l ir.LineID) []ir.Point {
	bm := s.points[s.find(l)]
	out := make([]ir.Point, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, ir.Point(it.Next()))
	}
	return out
}

func (s *lineStore) has(l ir.LineID, p ir.Point) bool {
	return s.points[s.find(l)].Contains(uint32(p))
}

func (s *lineStore) hasAll(l ir.LineID, pts []ir.Point) bool {
	bm := s.points[s.find(l)]
	return !slices.ContainsFunc(pts, func(p ir.Point) bool { return !bm.Contains(uint32(p)) })
}

func (s *lineStore) intersection(a, b ir.LineID) []ir.Point {
	a, b = s.find(a), s.find(b)
	if a == b {
		return nil
	}
	shared := roaring.And(s.points[a], s.points[b])
	out := make([]ir.Point, 0, shared.GetCardinality())
	it := shared.Iterator()
	for it.HasNext() {
		out = append(out, ir.Point(it.Next()))
	}
	return out
}
