package rules

import "github.com/JiajunSong-Bigai/inference-engine/internal/ir"

func triangles(f ir.Form) (ir.Triangle, ir.Triangle) {
	p := f.Points
	return ir.Triangle{p[0], p[1], p[2]}, ir.Triangle{p[3], p[4], p[5]}
}

func ruleD59(db Reader, f ir.Form) []ir.Fact {
	t1, t2 := triangles(f)
	if t1.Degenerate() || t2.Degenerate() {
		return nil
	}
	a, b, c := t1[0], t1[1], t1[2]
	p, q, r := t2[0], t2[1], t2[2]
	return []ir.Fact{ir.EqRatio{
		R1: ir.Ratio{C1: db.MatchCong(a, b), C2: db.MatchCong(a, c)},
		R2: ir.Ratio{C1: db.MatchCong(p, q), C2: db.MatchCong(p, r)},
	}}
}

func ruleD60(db Reader, f ir.Form) []ir.Fact {
	t1, t2 := triangles(f)
	if t1.Degenerate() || t2.Degenerate() {
		return nil
	}
	a, b, c := t1[0], t1[1], t1[2]
	p, q, r := t2[0], t2[1], t2[2]
	x := ir.Angle{L1: db.MatchLine(a, b), L2: db.MatchLine(a, c)}
	y := ir.Angle{L1: db.MatchLine(p, q), L2: db.MatchLine(p, r)}
	if x == y {
		return nil
	}
	return []ir.Fact{ir.EqAngle{A1: x, A2: y}}
}

func ruleD61(db Reader, f ir.Form) []ir.Fact {
	t1, t2 := triangles(f)
	if t1.Degenerate() || t2.Degenerate() {
		return nil
	}
	if !db.ContainsFact(ir.Cong{S1: ir.NewSegment(t1[0], t1[1]), S2: ir.NewSegment(t2[0], t2[1])}) {
		return nil
	}
	return []ir.Fact{ir.ConTri{T1: t1, T2: t2}}
}

func ruleD62(_ Reader, f ir.Form) []ir.Fact {
	t1, t2 := triangles(f)
	if t1[0] == t1[1] || t2[0] == t2[1] {
		return nil
	}
	return []ir.Fact{ir.Cong{S1: ir.NewSegment(t1[0], t1[1]), S2: ir.NewSegment(t2[0], t2[1])}}
}

// ruleD75eqratio: a ratio equal to c/c is a unit ratio.
func ruleD75eqratio(db Reader, f ir.Form) []ir.Fact {
	c1, c2, c3, c4 := f.Congs[0], f.Congs[1], f.Congs[2], f.Congs[3]
	if c3 != c4 || c1 == c2 {
		return nil
	}
	s1, s2 := db.CongSegments(c1), db.CongSegments(c2)
	if len(s1) == 0 || len(s2) == 0 {
		return nil
	}
	return []ir.Fact{ir.Cong{S1: s1[0], S2: s2[0]}}
}
