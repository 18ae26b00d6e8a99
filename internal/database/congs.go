package database

import (
	"slices"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// congStore is a union-find over congruence class ids. Each segment
// belongs to at most one class, so classes never share a segment.
type congStore struct {
	parent []ir.CongID
	segs   [][]ir.Segment
	bySeg  map[ir.Segment]ir.CongID
}

func newCongStore() *congStore {
	return &congStore{bySeg: make(map[ir.Segment]ir.CongID)}
}

func (s *congStore) find(c ir.CongID) ir.CongID {
	root := c
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for s.parent[c] != root {
		next := s.parent[c]
		s.parent[c] = root
		c = next
	}
	return root
}

func (s *congStore) valid(c ir.CongID) bool {
	return int(c) < len(s.parent)
}

func (s *congStore) lookup(seg ir.Segment) (ir.CongID, bool) {
	c, ok := s.bySeg[seg]
	if !ok {
		return 0, false
	}
	return s.find(c), true
}

func (s *congStore) match(seg ir.Segment) ir.CongID {
	if c, ok := s.lookup(seg); ok {
		return c
	}
	id := ir.CongID(len(s.parent))
	s.parent = append(s.parent, id)
	s.segs = append(s.segs, []ir.Segment{seg})
	s.bySeg[seg] = id
	return id
}

// union merges the classes of a and b into the smaller id. It reports
// whether two distinct classes were merged.
func (s *congStore) union(a, b ir.CongID) bool {
	a, b = s.find(a), s.find(b)
	if a == b {
		return false
	}
	if b < a {
		a, b = b, a
	}
	s.segs[a] = append(s.segs[a], s.segs[b]...)
	slices.SortFunc(s.segs[a], compareSegments)
	s.segs[b] = nil
	s.parent[b] = a
	return true
}

func (s *congStore) segments(c ir.CongID) []ir.Segment {
	return slices.Clone(s.segs[s.find(c)])
}

func (s *congStore) roots() []ir.CongID {
	var out []ir.CongID
	for i, p := range s.parent {
		if ir.CongID(i) == p {
			out = append(out, p)
		}
	}
	return out
}

func compareSegments(a, b ir.Segment) int {
	if a.P1 != b.P1 {
		return int(a.P1) - int(b.P1)
	}
	return int(a.P2) - int(b.P2)
}
