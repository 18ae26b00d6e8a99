package rules

import (
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Rules over point-level premises: coll, midp, cong and cyclic.

func ruleD67coll(db Reader, f ir.Form) []ir.Fact {
	a, b, c := f.Points[0], f.Points[1], f.Points[2]
	if !distinct(a, b, c) {
		return nil
	}
	if !db.ContainsFact(ir.Cong{S1: ir.NewSegment(a, b), S2: ir.NewSegment(a, c)}) {
		return nil
	}
	return []ir.Fact{ir.Midp{M: a, A: b, B: c}}
}

// ruleD44 is the midline theorem. The form (E,A,B) names A as the endpoint
// shared with the other midpoint fact.
func ruleD44(db Reader, f ir.Form) []ir.Fact {
	e, a, b := f.Points[0], f.Points[1], f.Points[2]
	var out []ir.Fact
	for _, m := range db.Midpoints() {
		if m.M == e {
			continue
		}
		var c ir.Point
		switch a {
		case m.A:
			c = m.B
		case m.B:
			c = m.A
		default:
			continue
		}
		if db.ContainsFact(ir.Coll{Points: []ir.Point{a, b, c}}) {
			continue
		}
		out = append(out, ir.Para{L1: db.MatchLine(e, m.M), L2: db.MatchLine(b, c)})
	}
	return out
}

func ruleD63(db Reader, f ir.Form) []ir.Fact {
	m, a, b := f.Points[0], f.Points[1], f.Points[2]
	var out []ir.Fact
	for _, o := range db.Midpoints() {
		if o.M != m || sameEndpoints(o, a, b) {
			continue
		}
		c, d := o.A, o.B
		if !distinct(a, b, c, d) {
			continue
		}
		out = append(out, ir.Para{L1: db.MatchLine(a, c), L2: db.MatchLine(b, d)})
	}
	return out
}

func ruleD68(_ Reader, f ir.Form) []ir.Fact {
	m, a, b := f.Points[0], f.Points[1], f.Points[2]
	if !distinct(m, a, b) {
		return nil
	}
	return []ir.Fact{ir.Cong{S1: ir.NewSegment(m, a), S2: ir.NewSegment(m, b)}}
}

func ruleD69(_ Reader, f ir.Form) []ir.Fact {
	return []ir.Fact{ir.Coll{Points: []ir.Point{f.Points[0], f.Points[1], f.Points[2]}}}
}

func ruleD70(db Reader, f ir.Form) []ir.Fact {
	m, a, b := f.Points[0], f.Points[1], f.Points[2]
	if !distinct(m, a, b) {
		return nil
	}
	own := ir.Ratio{C1: db.MatchCong(m, a), C2: db.MatchCong(a, b)}
	var out []ir.Fact
	for _, o := range db.Midpoints() {
		if o.M == m && sameEndpoints(o, a, b) {
			continue
		}
		if !distinct(o.M, o.A, o.B) {
			continue
		}
		other := ir.Ratio{C1: db.MatchCong(o.M, o.A), C2: db.MatchCong(o.A, o.B)}
		out = append(out, ir.EqRatio{R1: own, R2: other})
	}
	return out
}

// ruleD52midp finds the right angle at B from the perpendicular pairs whose
// lines pass through A and C.
func ruleD52midp(db Reader, f ir.Form) []ir.Fact {
	m, a, c := f.Points[0], f.Points[1], f.Points[2]
	var out []ir.Fact
	for _, pair := range db.PerpPairs() {
		l1, l2 := pair[0], pair[1]
		if !(onLine(db, l1, a) && onLine(db, l2, c)) && !(onLine(db, l1, c) && onLine(db, l2, a)) {
			continue
		}
		ip := db.LineIntersection(l1, l2)
		if len(ip) != 1 {
			continue
		}
		b := ip[0]
		if !distinct(m, a, b, c) {
			continue
		}
		out = append(out, ir.Cong{S1: ir.NewSegment(a, m), S2: ir.NewSegment(b, m)})
	}
	return out
}

func ruleD12(db Reader, f ir.Form) []ir.Fact {
	o, a, o2, b := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if o != o2 || !distinct(o, a, b) {
		return nil
	}
	cls, ok := db.LookupCong(o, a)
	if !ok {
		return nil
	}
	var out []ir.Fact
	for _, s := range db.CongSegments(cls) {
		if !s.Has(o) {
			continue
		}
		c := s.Other(o)
		if !distinct(o, a, b, c) {
			continue
		}
		out = append(out, ir.Circle{Center: o, Points: []ir.Point{a, b, c}})
	}
	return out
}

func ruleD46(db Reader, f ir.Form) []ir.Fact {
	o, a, o2, b := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if o != o2 || !distinct(o, a, b) {
		return nil
	}
	if db.ContainsFact(ir.Coll{Points: []ir.Point{o, a, b}}) {
		return nil
	}
	lOA, lAB, lOB := db.MatchLine(o, a), db.MatchLine(a, b), db.MatchLine(o, b)
	return []ir.Fact{ir.EqAngle{
		A1: ir.Angle{L1: lOA, L2: lAB},
		A2: ir.Angle{L1: lAB, L2: lOB},
	}}
}

// ruleD75cong reads a unit ratio c/c out of the ratio groups: every ratio
// equal to it relates two equal lengths.
func ruleD75cong(db Reader, f ir.Form) []ir.Fact {
	c1, ok1 := db.LookupCong(f.Points[0], f.Points[1])
	c2, ok2 := db.LookupCong(f.Points[2], f.Points[3])
	if !ok1 || !ok2 || c1 != c2 {
		return nil
	}
	var out []ir.Fact
	for _, r := range db.RatioGroupOf(ir.Ratio{C1: c1, C2: c1}) {
		if r.C1 == r.C2 {
			continue
		}
		s1, s2 := db.CongSegments(r.C1), db.CongSegments(r.C2)
		if len(s1) == 0 || len(s2) == 0 {
			continue
		}
		out = append(out, ir.Cong{S1: s1[0], S2: s2[0]})
	}
	return out
}

func ruleX4(db Reader, f ir.Form) []ir.Fact {
	m, a, m2, b := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if m != m2 || !distinct(m, a, b) {
		return nil
	}
	if !db.ContainsFact(ir.Coll{Points: []ir.Point{m, a, b}}) {
		return nil
	}
	return []ir.Fact{ir.Midp{M: m, A: a, B: b}}
}

// ruleD56: P and every other point Q equidistant from A and B lie on the
// perpendicular bisector of AB.
func ruleD56(db Reader, f ir.Form) []ir.Fact {
	a, p, b, p2 := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if p != p2 || !distinct(a, b, p) {
		return nil
	}
	var out []ir.Fact
	for _, q := range db.Points() {
		if !distinct(a, b, p, q) {
			continue
		}
		qa, ok1 := db.LookupCong(q, a)
		qb, ok2 := db.LookupCong(q, b)
		if !ok1 || !ok2 || qa != qb {
			continue
		}
		out = append(out, ir.Perp{L1: db.MatchLine(a, b), L2: db.MatchLine(p, q)})
	}
	return out
}

func ruleD41(db Reader, f ir.Form) []ir.Fact {
	a, b, p, q := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if !distinct(a, b, p, q) {
		return nil
	}
	lPA, lPB := db.MatchLine(p, a), db.MatchLine(p, b)
	lQA, lQB := db.MatchLine(q, a), db.MatchLine(q, b)
	if lPA == lPB || lQA == lQB {
		return nil
	}
	return []ir.Fact{ir.EqAngle{
		A1: ir.Angle{L1: lPA, L2: lPB},
		A2: ir.Angle{L1: lQA, L2: lQB},
	}}
}
