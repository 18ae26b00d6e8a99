package ir

import "fmt"

// Point is an interned point identifier. Identifiers are dense and start
// at zero in interning order.
type Point uint32

// LineID names a line group. A merged group is addressed by any of its
// ids; the database resolves them to the surviving representative.
type LineID uint32

// CongID names a congruence class of segments.
type CongID uint32

// Segment is an unordered pair of points, stored with P1 <= P2.
type Segment struct {
	P1, P2 Point
}

// NewSegment returns the normalized segment between a and b.
func NewSegment(a, b Point) Segment {
	if b < a {
		a, b = b, a
	}
	return Segment{P1: a, P2: b}
}

// Has reports whether p is an endpoint.
func (s Segment) Has(p Point) bool {
	return s.P1 == p || s.P2 == p
}

// Other returns the endpoint that is not p. p must be an endpoint.
func (s Segment) Other(p Point) Point {
	if s.P1 == p {
		return s.P2
	}
	return s.P1
}

// Degenerate reports whether both endpoints coincide.
func (s Segment) Degenerate() bool {
	return s.P1 == s.P2
}

func (s Segment) String() string {
	return fmt.Sprintf("%d-%d", s.P1, s.P2)
}

// Angle is the directed angle from L1 to L2.
type Angle struct {
	L1, L2 LineID
}

// Reverse returns the angle from L2 to L1.
func (a Angle) Reverse() Angle {
	return Angle{L1: a.L2, L2: a.L1}
}

// Ratio is the ratio of the length class C1 to the length class C2.
type Ratio struct {
	C1, C2 CongID
}

// Reverse returns the inverted ratio.
func (r Ratio) Reverse() Ratio {
	return Ratio{C1: r.C2, C2: r.C1}
}

// Triangle is an ordered vertex triple. Rotations describe the same
// triangle; reflections do not.
type Triangle [3]Point

// Rotate returns the k-th cyclic rotation: Rotate(1) of (A,B,C) is (B,C,A).
func (t Triangle) Rotate(k int) Triangle {
	k = ((k % 3) + 3) % 3
	return Triangle{t[k], t[(k+1)%3], t[(k+2)%3]}
}

// Canonical returns the rotation that starts at the smallest vertex, and
// the rotation k such that t == Canonical().Rotate(k).
func (t Triangle) Canonical() (Triangle, int) {
	m := 0
	for i := 1; i < 3; i++ {
		if t[i] < t[m] {
			m = i
		}
	}
	c := t.Rotate(m)
	return c, (3 - m) % 3
}

// Equal reports whether u is a rotation of t.
func (t Triangle) Equal(u Triangle) bool {
	a, _ := t.Canonical()
	b, _ := u.Canonical()
	return a == b
}

// Degenerate reports whether two vertices coincide.
func (t Triangle) Degenerate() bool {
	return t[0] == t[1] || t[1] == t[2] || t[0] == t[2]
}
