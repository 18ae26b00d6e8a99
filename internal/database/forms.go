package database

import (
	"slices"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// AllForms expands a fact into every arrangement a rule may need to see.
// Group-level facts expand over their whole group: a collinearity over
// every point of its line, a congruence over every segment of its class,
// and a parallel, angle, ratio or triangle equality over every pair of
// members. A fact that merged two groups thereby also yields the
// equalities the merge created between them.
func (db *Database) AllForms(f ir.Fact) []ir.Form {
	switch f := f.(type) {
	case ir.Coll:
		return db.collForms(f)
	case ir.Cong:
		return db.congForms(f)
	case ir.Midp:
		return []ir.Form{
			{Kind: ir.KindMidp, Points: []ir.Point{f.M, f.A, f.B}},
			{Kind: ir.KindMidp, Points: []ir.Point{f.M, f.B, f.A}},
		}
	case ir.Para:
		l1, l2 := db.ResolveLine(f.L1), db.ResolveLine(f.L2)
		var forms []ir.Form
		for _, pair := range groupPairs(db.para.groupOf(l1), l1, l2) {
			forms = append(forms, db.linePairForms(ir.KindPara, pair[0], pair[1])...)
		}
		return forms
	case ir.Perp:
		return db.linePairForms(ir.KindPerp, f.L1, f.L2)
	case ir.EqAngle:
		a1, a2 := db.resolveAngle(f.A1), db.resolveAngle(f.A2)
		var forms []ir.Form
		for _, pair := range groupPairs(db.angles.groupOf(a1), a1, a2) {
			x, y := pair[0], pair[1]
			for _, v := range equalityVariants(int(x.L1), int(x.L2), int(y.L1), int(y.L2)) {
				forms = append(forms, ir.Form{
					Kind:  ir.KindEqAngle,
					Lines: []ir.LineID{ir.LineID(v[0]), ir.LineID(v[1]), ir.LineID(v[2]), ir.LineID(v[3])},
				})
			}
		}
		return forms
	case ir.EqRatio:
		r1, r2 := db.resolveRatio(f.R1), db.resolveRatio(f.R2)
		var forms []ir.Form
		for _, pair := range groupPairs(db.ratios.groupOf(r1), r1, r2) {
			x, y := pair[0], pair[1]
			for _, v := range equalityVariants(int(x.C1), int(x.C2), int(y.C1), int(y.C2)) {
				forms = append(forms, ir.Form{
					Kind:  ir.KindEqRatio,
					Congs: []ir.CongID{ir.CongID(v[0]), ir.CongID(v[1]), ir.CongID(v[2]), ir.CongID(v[3])},
				})
			}
		}
		return forms
	case ir.SimTri:
		return groupTriangleForms(ir.KindSimTri, db.sim.aligned(f.T1, f.T2), f.T1, f.T2)
	case ir.ConTri:
		return groupTriangleForms(ir.KindConTri, db.con.aligned(f.T1, f.T2), f.T1, f.T2)
	case ir.Cyclic:
		return db.cyclicForms(f.Points)
	case ir.Circle:
		return []ir.Form{{Kind: ir.KindCircle, Points: append([]ir.Point{f.Center}, f.Points...)}}
	}
	return nil
}

func (db *Database) collForms(f ir.Coll) []ir.Form {
	pts := distinct(f.Points)
	if len(pts) >= 2 {
		if l, ok := db.lines.lookup(pts[0], pts[1]); ok && db.lines.hasAll(l, pts) {
			pts = db.lines.pointsOf(l)
		}
	}
	var forms []ir.Form
	for _, a := range pts {
		for i, b := range pts {
			if b == a {
				continue
			}
			for _, c := range pts[i+1:] {
				if c == a {
					continue
				}
				forms = append(forms, ir.Form{Kind: ir.KindColl, Points: []ir.Point{a, b, c}})
			}
		}
	}
	return forms
}

func (db *Database) congForms(f ir.Cong) []ir.Form {
	segs := []ir.Segment{f.S1, f.S2}
	if c, ok := db.congs.lookup(f.S1); ok {
		segs = db.congs.segments(c)
	}
	var forms []ir.Form
	for _, s := range segs {
		for _, t := range segs {
			if s == t {
				continue
			}
			for _, sp := range [][2]ir.Point{{s.P1, s.P2}, {s.P2, s.P1}} {
				for _, tp := range [][2]ir.Point{{t.P1, t.P2}, {t.P2, t.P1}} {
					forms = append(forms, ir.Form{
						Kind:   ir.KindCong,
						Points: []ir.Point{sp[0], sp[1], tp[0], tp[1]},
					})
				}
			}
		}
	}
	return forms
}

func (db *Database) linePairForms(kind ir.Kind, l1, l2 ir.LineID) []ir.Form {
	l1, l2 = db.ResolveLine(l1), db.ResolveLine(l2)
	var forms []ir.Form
	for _, pair := range [][2]ir.LineID{{l1, l2}, {l2, l1}} {
		first := orderedPairs(db.LinePoints(pair[0]))
		second := orderedPairs(db.LinePoints(pair[1]))
		for _, p := range first {
			for _, q := range second {
				forms = append(forms, ir.Form{
					Kind:   kind,
					Points: []ir.Point{p[0], p[1], q[0], q[1]},
					Lines:  []ir.LineID{pair[0], pair[1]},
				})
			}
		}
		if l1 == l2 {
			break
		}
	}
	return forms
}

// groupPairs lists every pair of group members, or just a and b when they
// are not both members (the fact holds through another arrangement).
func groupPairs[K comparable](group []K, a, b K) [][2]K {
	if !slices.Contains(group, a) || !slices.Contains(group, b) {
		return [][2]K{{a, b}}
	}
	var out [][2]K
	for i, x := range group {
		for _, y := range group[i+1:] {
			out = append(out, [2]K{x, y})
		}
	}
	return out
}

func orderedPairs(pts []ir.Point) [][2]ir.Point {
	var out [][2]ir.Point
	for _, a := range pts {
		for _, b := range pts {
			if a != b {
				out = append(out, [2]ir.Point{a, b})
			}
		}
	}
	return out
}

func groupTriangleForms(kind ir.Kind, group []ir.Triangle, t1, t2 ir.Triangle) []ir.Form {
	if len(group) < 2 {
		return triangleForms(kind, t1, t2)
	}
	var forms []ir.Form
	for i, a := range group {
		for _, b := range group[i+1:] {
			forms = append(forms, triangleForms(kind, a, b)...)
		}
	}
	return forms
}

func triangleForms(kind ir.Kind, t1, t2 ir.Triangle) []ir.Form {
	forms := make([]ir.Form, 0, 6)
	for _, pair := range [][2]ir.Triangle{{t1, t2}, {t2, t1}} {
		for k := 0; k < 3; k++ {
			a, b := pair[0].Rotate(k), pair[1].Rotate(k)
			forms = append(forms, ir.Form{
				Kind:   kind,
				Points: []ir.Point{a[0], a[1], a[2], b[0], b[1], b[2]},
			})
		}
	}
	return forms
}

// cyclicForms lists, for every four points of the circle, each choice of
// chord AB seen from the remaining P and Q.
func (db *Database) cyclicForms(fact []ir.Point) []ir.Form {
	pts := distinct(fact)
	if circle, ok := db.circ.circleOf(pts); ok {
		pts = circle
	}
	var forms []ir.Form
	n := len(pts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				for l := k + 1; l < n; l++ {
					q := [4]ir.Point{pts[i], pts[j], pts[k], pts[l]}
					for _, a := range [6][4]int{
						{0, 1, 2, 3}, {0, 2, 1, 3}, {0, 3, 1, 2},
						{1, 2, 0, 3}, {1, 3, 0, 2}, {2, 3, 0, 1},
					} {
						forms = append(forms, ir.Form{
							Kind:   ir.KindCyclic,
							Points: []ir.Point{q[a[0]], q[a[1]], q[a[2]], q[a[3]]},
						})
					}
				}
			}
		}
	}
	return forms
}
