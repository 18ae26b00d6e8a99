package database

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// ContainsFact reports whether f is entailed by the stored groups. The
// answer does not depend on which point pairs or which member ids were
// used to build f.
func (db *Database) ContainsFact(f ir.Fact) bool {
	switch f := f.(type) {
	case ir.Coll:
		pts := distinct(f.Points)
		if len(pts) <= 2 {
			return true
		}
		l, ok := db.lines.lookup(pts[0], pts[1])
		return ok && db.lines.hasAll(l, pts)
	case ir.Cong:
		if f.S1 == f.S2 {
			return true
		}
		c1, ok1 := db.congs.lookup(f.S1)
		c2, ok2 := db.congs.lookup(f.S2)
		return ok1 && ok2 && c1 == c2
	case ir.Midp:
		_, ok := db.midpOf[midpKey(f)]
		return ok
	case ir.Para:
		l1, l2 := db.ResolveLine(f.L1), db.ResolveLine(f.L2)
		return l1 == l2 || db.para.same(l1, l2)
	case ir.Perp:
		_, ok := db.perp[db.perpKey(f.L1, f.L2)]
		return ok
	case ir.EqAngle:
		return db.containsEqAngle(db.resolveAngle(f.A1), db.resolveAngle(f.A2))
	case ir.EqRatio:
		return db.containsEqRatio(db.resolveRatio(f.R1), db.resolveRatio(f.R2))
	case ir.SimTri:
		return db.sim.corresponds(f.T1, f.T2)
	case ir.ConTri:
		return db.con.corresponds(f.T1, f.T2)
	case ir.Cyclic:
		pts := distinct(f.Points)
		if len(pts) <= 3 {
			return true
		}
		return db.circ.containsAll(pts)
	case ir.Circle:
		pts := distinct(f.Points)
		if len(pts) <= 1 {
			return true
		}
		return db.circ.containsCentered(f.Center, pts)
	default:
		panic(fmt.Sprintf("database: unhandled fact %T", f))
	}
}

func (db *Database) containsEqAngle(a1, a2 ir.Angle) bool {
	if a1 == a2 || (a1.L1 == a1.L2 && a2.L1 == a2.L2) {
		return true
	}
	cross1 := ir.Angle{L1: a1.L1, L2: a2.L1}
	cross2 := ir.Angle{L1: a1.L2, L2: a2.L2}
	return db.angles.same(a1, a2) ||
		db.angles.same(a1.Reverse(), a2.Reverse()) ||
		db.angles.same(cross1, cross2) ||
		db.angles.same(cross1.Reverse(), cross2.Reverse())
}

func (db *Database) containsEqRatio(r1, r2 ir.Ratio) bool {
	if r1 == r2 || (r1.C1 == r1.C2 && r2.C1 == r2.C2) {
		return true
	}
	cross1 := ir.Ratio{C1: r1.C1, C2: r2.C1}
	cross2 := ir.Ratio{C1: r1.C2, C2: r2.C2}
	return db.ratios.same(r1, r2) ||
		db.ratios.same(r1.Reverse(), r2.Reverse()) ||
		db.ratios.same(cross1, cross2) ||
		db.ratios.same(cross1.Reverse(), cross2.Reverse())
}

// AddFact stores f. It returns false without changes when f is already
// contained. Otherwise it creates or grows the groups f touches, merges
// groups f bridges, and re-keys structures that referenced a merged id.
// ContainsFact(f) holds afterwards.
//
// AddFact does not advance the generation; the caller decides when a
// batch of additions is one step.
func (db *Database) AddFact(f ir.Fact) bool {
	if db.ContainsFact(f) {
		return false
	}
	switch f := f.(type) {
	case ir.Coll:
		db.addColl(distinct(f.Points))
	case ir.Cong:
		c1 := db.congs.match(f.S1)
		c2 := db.congs.match(f.S2)
		if db.congs.union(c1, c2) {
			db.rekeyCongs()
		}
	case ir.Midp:
		key := midpKey(f)
		db.midpOf[key] = struct{}{}
		db.midps = append(db.midps, ir.Midp{M: key[0], A: key[1], B: key[2]})
		if pts := distinct([]ir.Point{f.M, f.A, f.B}); len(pts) == 3 {
			db.addColl(pts)
		}
	case ir.Para:
		db.para.union(db.ResolveLine(f.L1), db.ResolveLine(f.L2))
	case ir.Perp:
		db.perp[db.perpKey(f.L1, f.L2)] = struct{}{}
	case ir.EqAngle:
		db.angles.union(db.resolveAngle(f.A1), db.resolveAngle(f.A2))
	case ir.EqRatio:
		db.ratios.union(db.resolveRatio(f.R1), db.resolveRatio(f.R2))
	case ir.SimTri:
		db.sim.union(f.T1, f.T2)
	case ir.ConTri:
		db.con.union(f.T1, f.T2)
	case ir.Cyclic:
		db.circ.add(0, false, distinct(f.Points))
	case ir.Circle:
		db.circ.add(f.Center, true, distinct(f.Points))
	default:
		panic(fmt.Sprintf("database: unhandled fact %T", f))
	}
	return true
}

func (db *Database) addColl(pts []ir.Point) {
	var l ir.LineID
	if existing, ok := db.lines.containing(pts); ok {
		l = existing
		db.lines.add(l, pts...)
	} else {
		l = db.lines.create(pts...)
	}
	if _, merged := db.lines.close(l); merged {
		db.rekeyLines()
	}
}

func midpKey(m ir.Midp) [3]ir.Point {
	a, b := m.A, m.B
	if b < a {
		a, b = b, a
	}
	return [3]ir.Point{m.M, a, b}
}

// distinct returns the points sorted ascending without repeats.
func distinct(pts []ir.Point) []ir.Point {
	out := slices.Clone(pts)
	slices.Sort(out)
	return slices.Compact(out)
}

// Key returns a canonical string for f under the current groups. Two facts
// with equal keys are the same statement. Keys of facts over line or
// congruence ids change when those ids are merged.
func (db *Database) Key(f ir.Fact) string {
	var b strings.Builder
	b.WriteString(f.Kind().String())
	b.WriteByte(':')
	switch f := f.(type) {
	case ir.Coll:
		writeInts(&b, points(distinct(f.Points))...)
	case ir.Cong:
		s1, s2 := f.S1, f.S2
		if compareSegments(s2, s1) < 0 {
			s1, s2 = s2, s1
		}
		writeInts(&b, int(s1.P1), int(s1.P2), int(s2.P1), int(s2.P2))
	case ir.Midp:
		k := midpKey(f)
		writeInts(&b, int(k[0]), int(k[1]), int(k[2]))
	case ir.Para:
		k := db.perpKey(f.L1, f.L2)
		writeInts(&b, int(k[0]), int(k[1]))
	case ir.Perp:
		k := db.perpKey(f.L1, f.L2)
		writeInts(&b, int(k[0]), int(k[1]))
	case ir.EqAngle:
		a1, a2 := db.resolveAngle(f.A1), db.resolveAngle(f.A2)
		writeInts(&b, minVariant(int(a1.L1), int(a1.L2), int(a2.L1), int(a2.L2))...)
	case ir.EqRatio:
		r1, r2 := db.resolveRatio(f.R1), db.resolveRatio(f.R2)
		writeInts(&b, minVariant(int(r1.C1), int(r1.C2), int(r2.C1), int(r2.C2))...)
	case ir.SimTri:
		writeInts(&b, triangleKey(f.T1, f.T2)...)
	case ir.ConTri:
		writeInts(&b, triangleKey(f.T1, f.T2)...)
	case ir.Cyclic:
		writeInts(&b, points(distinct(f.Points))...)
	case ir.Circle:
		writeInts(&b, int(f.Center))
		b.WriteByte('|')
		writeInts(&b, points(distinct(f.Points))...)
	}
	return b.String()
}

func points(pts []ir.Point) []int {
	out := make([]int, len(pts))
	for i, p := range pts {
		out[i] = int(p)
	}
	return out
}

func writeInts(b *strings.Builder, ns ...int) {
	for i, n := range ns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
}

// equalityVariants lists the eight arrangements of x1/x2 = x3/x4 that
// state the same equality.
func equalityVariants(a, b, c, d int) [8][4]int {
	return [8][4]int{
		{a, b, c, d}, {c, d, a, b}, {b, a, d, c}, {d, c, b, a},
		{a, c, b, d}, {b, d, a, c}, {c, a, d, b}, {d, b, c, a},
	}
}

func minVariant(a, b, c, d int) []int {
	vs := equalityVariants(a, b, c, d)
	best := vs[0]
	for _, v := range vs[1:] {
		if slices.Compare(v[:], best[:]) < 0 {
			best = v
		}
	}
	return best[:]
}

func triangleKey(t1, t2 ir.Triangle) []int {
	var best []int
	for _, pair := range [][2]ir.Triangle{{t1, t2}, {t2, t1}} {
		for k := 0; k < 3; k++ {
			a, b := pair[0].Rotate(k), pair[1].Rotate(k)
			v := []int{int(a[0]), int(a[1]), int(a[2]), int(b[0]), int(b[1]), int(b[2])}
			if best == nil || slices.Compare(v, best) < 0 {
				best = v
			}
		}
	}
	return best
}
