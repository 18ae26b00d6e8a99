package rules

import (
	"slices"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Rules over para, perp and eqangle. Para and perp forms carry both the
// point arrangement and the two lines; eqangle forms carry four lines.

func lines2(f ir.Form) (ir.LineID, ir.LineID) {
	return f.Lines[0], f.Lines[1]
}

func lines4(f ir.Form) (ir.LineID, ir.LineID, ir.LineID, ir.LineID) {
	return f.Lines[0], f.Lines[1], f.Lines[2], f.Lines[3]
}

func ruleD40(db Reader, f ir.Form) []ir.Fact {
	l1, l2 := lines2(f)
	if l1 == l2 {
		return nil
	}
	var out []ir.Fact
	for _, l := range db.Lines() {
		if l == l1 || l == l2 || db.ContainsFact(ir.Para{L1: l, L2: l1}) {
			continue
		}
		out = append(out, ir.EqAngle{
			A1: ir.Angle{L1: l1, L2: l},
			A2: ir.Angle{L1: l2, L2: l},
		})
	}
	return out
}

func ruleD10para(db Reader, f ir.Form) []ir.Fact {
	l1, l2 := lines2(f)
	var out []ir.Fact
	for _, l := range db.PerpendicularTo(l2) {
		if l == l1 || l == l2 {
			continue
		}
		out = append(out, ir.Perp{L1: l1, L2: l})
	}
	return out
}

func ruleD64(db Reader, f ir.Form) []ir.Fact {
	a, c, b, d := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if !distinct(a, b, c, d) {
		return nil
	}
	lAD, ok1 := db.LookupLine(a, d)
	lBC, ok2 := db.LookupLine(b, c)
	if !ok1 || !ok2 || lAD == lBC || !db.ContainsFact(ir.Para{L1: lAD, L2: lBC}) {
		return nil
	}
	var out []ir.Fact
	for _, m := range db.Midpoints() {
		if sameEndpoints(m, a, b) && distinct(m.M, c, d) {
			out = append(out, ir.Midp{M: m.M, A: c, B: d})
		}
	}
	return out
}

func ruleD65(db Reader, f ir.Form) []ir.Fact {
	a, b, c, d := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if !distinct(a, b, c, d) {
		return nil
	}
	onBD := pointsThrough(db, b, d)
	var out []ir.Fact
	for _, o := range pointsThrough(db, a, c) {
		if !distinct(o, a, b, c, d) || !slices.Contains(onBD, o) {
			continue
		}
		out = append(out, ir.EqRatio{
			R1: ir.Ratio{C1: db.MatchCong(o, a), C2: db.MatchCong(a, c)},
			R2: ir.Ratio{C1: db.MatchCong(o, b), C2: db.MatchCong(b, d)},
		})
	}
	return out
}

func ruleD66(_ Reader, f ir.Form) []ir.Fact {
	a, b, a2, c := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if a != a2 || !distinct(a, b, c) {
		return nil
	}
	return []ir.Fact{ir.Coll{Points: []ir.Point{a, b, c}}}
}

func ruleD09(db Reader, f ir.Form) []ir.Fact {
	l1, l2 := lines2(f)
	var out []ir.Fact
	for _, l := range db.PerpendicularTo(l2) {
		if l == l1 || l == l2 {
			continue
		}
		out = append(out, ir.Para{L1: l1, L2: l})
	}
	return out
}

func ruleD10perp(db Reader, f ir.Form) []ir.Fact {
	l1, l2 := lines2(f)
	var out []ir.Fact
	for _, l := range db.ParallelTo(l1) {
		if l == l1 || l == l2 {
			continue
		}
		out = append(out, ir.Perp{L1: l, L2: l2})
	}
	return out
}

func ruleD52perp(db Reader, f ir.Form) []ir.Fact {
	a, b, b2, c := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if b != b2 || !distinct(a, b, c) {
		return nil
	}
	var out []ir.Fact
	for _, m := range db.Midpoints() {
		if sameEndpoints(m, a, c) && m.M != b {
			out = append(out, ir.Cong{S1: ir.NewSegment(a, m.M), S2: ir.NewSegment(b, m.M)})
		}
	}
	return out
}

func ruleD55perp(db Reader, f ir.Form) []ir.Fact {
	o, m, a, b := f.Points[0], f.Points[1], f.Points[2], f.Points[3]
	if !distinct(o, m, a, b) {
		return nil
	}
	for _, mp := range db.Midpoints() {
		if mp.M == m && sameEndpoints(mp, a, b) {
			return []ir.Fact{ir.Cong{S1: ir.NewSegment(o, a), S2: ir.NewSegment(o, b)}}
		}
	}
	return nil
}

func ruleX2(db Reader, f ir.Form) []ir.Fact {
	l1, l2 := lines2(f)
	own := ir.Angle{L1: l1, L2: l2}
	var out []ir.Fact
	for _, pair := range db.PerpPairs() {
		if (pair[0] == l1 && pair[1] == l2) || (pair[0] == l2 && pair[1] == l1) {
			continue
		}
		out = append(out,
			ir.EqAngle{A1: own, A2: ir.Angle{L1: pair[0], L2: pair[1]}},
			ir.EqAngle{A1: own, A2: ir.Angle{L1: pair[1], L2: pair[0]}},
		)
	}
	return out
}

func ruleX3(_ Reader, f ir.Form) []ir.Fact {
	l1, l2 := lines2(f)
	if l1 == l2 {
		return nil
	}
	return []ir.Fact{ir.EqAngle{A1: ir.Angle{L1: l1, L2: l2}, A2: ir.Angle{L1: l2, L2: l1}}}
}

func ruleD22(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	a, b := ir.Angle{L1: l1, L2: l2}, ir.Angle{L1: l3, L2: l4}
	var out []ir.Fact
	for _, x := range db.AngleGroupOf(a) {
		if x != a && x != b {
			out = append(out, ir.EqAngle{A1: b, A2: x})
		}
	}
	for _, x := range db.AngleGroupOf(b) {
		if x != a && x != b {
			out = append(out, ir.EqAngle{A1: a, A2: x})
		}
	}
	return out
}

func ruleD39(_ Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	if l2 != l4 || l1 == l2 || l1 == l3 || l2 == l3 {
		return nil
	}
	return []ir.Fact{ir.Para{L1: l1, L2: l3}}
}

// ruleD47: the base angles OAB and ABO of a triangle are equal, so the
// triangle is isosceles with apex O.
func ruleD47(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	if l2 != l3 {
		return nil
	}
	a, ok1 := meet(db, l1, l2)
	o, ok2 := meet(db, l1, l4)
	b, ok3 := meet(db, l2, l4)
	if !ok1 || !ok2 || !ok3 || !distinct(a, o, b) {
		return nil
	}
	return []ir.Fact{ir.Cong{S1: ir.NewSegment(o, a), S2: ir.NewSegment(o, b)}}
}

// ruleD58 reads angle ABC from the form and searches the other angle
// groups for a matching pair of angles at C and R.
func ruleD58(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	b, ok1 := meet(db, l1, l2)
	q, ok2 := meet(db, l3, l4)
	if !ok1 || !ok2 {
		return nil
	}
	own := []ir.Angle{{L1: l1, L2: l2}, {L1: l2, L2: l1}, {L1: l3, L2: l4}, {L1: l4, L2: l3}}
	var out []ir.Fact
	for _, group := range db.AngleGroups() {
		if slices.ContainsFunc(group, func(x ir.Angle) bool { return slices.Contains(own, x) }) {
			continue
		}
		for _, x := range group {
			for _, y := range group {
				var lAC, lPR ir.LineID
				switch {
				case x.L1 == l2 && y.L1 == l4:
					lAC, lPR = x.L2, y.L2
				case x.L2 == l2 && y.L2 == l4:
					lAC, lPR = x.L1, y.L1
				default:
					continue
				}
				a, okA := meet(db, l1, lAC)
				c, okC := meet(db, l2, lAC)
				p, okP := meet(db, l3, lPR)
				r, okR := meet(db, l4, lPR)
				if !okA || !okC || !okP || !okR {
					continue
				}
				t1, t2 := ir.Triangle{a, b, c}, ir.Triangle{p, q, r}
				if t1 == t2 || t1.Degenerate() || t2.Degenerate() {
					continue
				}
				out = append(out, ir.SimTri{T1: t1, T2: t2})
			}
		}
	}
	return out
}

// ruleX1 is side-angle-side: the equal angles sit at B and Q, and every
// choice of A, C, P, R on their sides is checked for the two equal sides.
func ruleX1(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	b, ok1 := meet(db, l1, l2)
	q, ok2 := meet(db, l3, l4)
	if !ok1 || !ok2 {
		return nil
	}
	var out []ir.Fact
	for _, a := range db.LinePoints(l1) {
		if a == b {
			continue
		}
		for _, p := range db.LinePoints(l3) {
			if p == q || !db.ContainsFact(ir.Cong{S1: ir.NewSegment(a, b), S2: ir.NewSegment(p, q)}) {
				continue
			}
			for _, c := range db.LinePoints(l2) {
				if c == b {
					continue
				}
				for _, r := range db.LinePoints(l4) {
					if r == q || !db.ContainsFact(ir.Cong{S1: ir.NewSegment(b, c), S2: ir.NewSegment(q, r)}) {
						continue
					}
					t1, t2 := ir.Triangle{a, b, c}, ir.Triangle{p, q, r}
					if t1.Equal(t2) {
						continue
					}
					out = append(out, ir.ConTri{T1: t1, T2: t2})
				}
			}
		}
	}
	return out
}

func ruleD71(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	if l1 != l4 || l2 != l3 || l1 == l2 || db.ContainsFact(ir.Para{L1: l1, L2: l2}) {
		return nil
	}
	return []ir.Fact{ir.Perp{L1: l1, L2: l2}}
}

func ruleD73(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	if l1 == l2 || !db.ContainsFact(ir.Para{L1: l3, L2: l4}) {
		return nil
	}
	return []ir.Fact{ir.Para{L1: l1, L2: l2}}
}

func ruleD74(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	if l1 == l2 || !db.ContainsFact(ir.Perp{L1: l3, L2: l4}) {
		return nil
	}
	return []ir.Fact{ir.Perp{L1: l1, L2: l2}}
}

// ruleD42a reads the four vertices off the pairwise intersections of the
// lines and fires only when all four exist and differ.
func ruleD42a(db Reader, f ir.Form) []ir.Fact {
	l1, l2, l3, l4 := lines4(f)
	if l1 == l3 {
		return nil
	}
	a, ok1 := meet(db, l1, l2)
	b, ok2 := meet(db, l3, l4)
	p, ok3 := meet(db, l1, l3)
	q, ok4 := meet(db, l2, l4)
	if !ok1 || !ok2 || !ok3 || !ok4 || !distinct(a, b, p, q) {
		return nil
	}
	return []ir.Fact{ir.Cyclic{Points: []ir.Point{a, b, p, q}}}
}
