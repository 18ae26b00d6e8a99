package database

import (
	"slices"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// triangleGroups stores vertex correspondences between triangles.
//
// Nodes are canonical rotations. Each node carries a rotation offset w
// relative to its root: vertex j of the node corresponds to vertex j-w of
// the root. Rotate(x) of node a and Rotate(y) of node b then correspond
// vertex by vertex iff both share a root and x-w(a) == y-w(b) mod 3.
//
// A relation that contradicts the offsets already stored under one root
// (a triangle similar to a rotation of itself, or to a second arrangement
// of a group member) is kept in extra.
type triangleGroups struct {
	parent map[ir.Triangle]ir.Triangle
	offset map[ir.Triangle]int
	order  []ir.Triangle
	extra  map[[2]ir.Triangle]struct{}
}

func newTriangleGroups() *triangleGroups {
	return &triangleGroups{
		parent: make(map[ir.Triangle]ir.Triangle),
		offset: make(map[ir.Triangle]int),
		extra:  make(map[[2]ir.Triangle]struct{}),
	}
}

func mod3(n int) int {
	return ((n % 3) + 3) % 3
}

// find returns the root of canonical node c and the offset of c relative
// to it, compressing the path.
func (g *triangleGroups) find(c ir.Triangle) (ir.Triangle, int, bool) {
	p, ok := g.parent[c]
	if !ok {
		return c, 0, false
	}
	if p == c {
		return c, 0, true
	}
	root, w, _ := g.find(p)
	total := mod3(g.offset[c] + w)
	g.parent[c] = root
	g.offset[c] = total
	return root, total, true
}

func (g *triangleGroups) ensure(c ir.Triangle) {
	if _, ok := g.parent[c]; !ok {
		g.parent[c] = c
		g.offset[c] = 0
		g.order = append(g.order, c)
	}
}

// corresponds reports whether t1 and t2 are recorded as corresponding
// vertex by vertex.
func (g *triangleGroups) corresponds(t1, t2 ir.Triangle) bool {
	if t1 == t2 {
		return true
	}
	ca, x := t1.Canonical()
	cb, y := t2.Canonical()
	ra, wa, okA := g.find(ca)
	rb, wb, okB := g.find(cb)
	if okA && okB && ra == rb && mod3(x-wa) == mod3(y-wb) {
		return true
	}
	_, found := g.extra[pairKey(t1, t2)]
	return found
}

// union records that t1 corresponds to t2.
func (g *triangleGroups) union(t1, t2 ir.Triangle) {
	ca, x := t1.Canonical()
	cb, y := t2.Canonical()
	g.ensure(ca)
	g.ensure(cb)
	ra, wa, _ := g.find(ca)
	rb, wb, _ := g.find(cb)
	if ra == rb {
		if mod3(x-wa) != mod3(y-wb) {
			g.extra[pairKey(t1, t2)] = struct{}{}
		}
		return
	}
	if compareTriangles(rb, ra) < 0 {
		ra, rb = rb, ra
		x, y = y, x
		wa, wb = wb, wa
	}
	g.parent[rb] = ra
	g.offset[rb] = mod3(y - x + wa - wb)
}

// aligned returns the group holding the correspondence t1 ~ t2, every
// member rotated into the root's vertex order. It is nil when the
// correspondence is not stored through the union-find.
func (g *triangleGroups) aligned(t1, t2 ir.Triangle) []ir.Triangle {
	ca, x := t1.Canonical()
	cb, y := t2.Canonical()
	ra, wa, okA := g.find(ca)
	rb, wb, okB := g.find(cb)
	if !okA || !okB || ra != rb || mod3(x-wa) != mod3(y-wb) {
		return nil
	}
	var out []ir.Triangle
	for _, c := range g.order {
		if root, w, _ := g.find(c); root == ra {
			out = append(out, c.Rotate(w))
		}
	}
	return out
}

// pairKey is the order- and rotation-independent key of a single
// correspondence.
func pairKey(t1, t2 ir.Triangle) [2]ir.Triangle {
	a := normalizePair(t1, t2)
	b := normalizePair(t2, t1)
	if compareTriangles(b[0], a[0]) < 0 || (b[0] == a[0] && compareTriangles(b[1], a[1]) < 0) {
		return b
	}
	return a
}

func normalizePair(t1, t2 ir.Triangle) [2]ir.Triangle {
	c, x := t1.Canonical()
	return [2]ir.Triangle{c, t2.Rotate(-x)}
}

// groups lists each group's members aligned to the root's vertex order.
func (g *triangleGroups) groups() [][]ir.Triangle {
	byRoot := make(map[ir.Triangle][]ir.Triangle)
	var roots []ir.Triangle
	for _, c := range g.order {
		root, w, _ := g.find(c)
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], c.Rotate(w))
	}
	var out [][]ir.Triangle
	for _, r := range roots {
		if len(byRoot[r]) >= 2 {
			out = append(out, byRoot[r])
		}
	}
	for _, k := range g.extraPairs() {
		out = append(out, []ir.Triangle{k[0], k[1]})
	}
	return out
}

func (g *triangleGroups) extraPairs() [][2]ir.Triangle {
	out := make([][2]ir.Triangle, 0, len(g.extra))
	for k := range g.extra {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b [2]ir.Triangle) int {
		if c := compareTriangles(a[0], b[0]); c != 0 {
			return c
		}
		return compareTriangles(a[1], b[1])
	})
	return out
}

func compareTriangles(a, b ir.Triangle) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
