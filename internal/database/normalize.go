package database

import (
	"fmt"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// FromPredicate converts a point-level predicate into a fact, interning
// its points and allocating the lines and congruence classes it names.
func (db *Database) FromPredicate(p ir.Predicate) (ir.Fact, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pts := make([]ir.Point, len(p.Points))
	for i, name := range p.Points {
		pts[i] = db.Intern(name)
	}
	return db.buildFact(p.Kind, pts, db.MatchLine, db.MatchCong)
}

// LookupFact converts a predicate without changing the database. It
// reports false when a point, line or congruence class the predicate
// needs does not exist; such a predicate cannot be entailed.
func (db *Database) LookupFact(p ir.Predicate) (ir.Fact, bool) {
	if p.Validate() != nil {
		return nil, false
	}
	pts := make([]ir.Point, len(p.Points))
	for i, name := range p.Points {
		pt, ok := db.LookupPoint(name)
		if !ok {
			return nil, false
		}
		pts[i] = pt
	}
	missing := false
	line := func(a, b ir.Point) ir.LineID {
		l, ok := db.LookupLine(a, b)
		if !ok || a == b {
			missing = true
		}
		return l
	}
	cong := func(a, b ir.Point) ir.CongID {
		c, ok := db.LookupCong(a, b)
		if !ok {
			missing = true
		}
		return c
	}
	f, err := db.buildFact(p.Kind, pts, line, cong)
	if err != nil || missing {
		return nil, false
	}
	return f, true
}

// Prove reports whether the predicate is entailed. It never changes the
// database. Phrasings that hold in any database, such as cong(A,B,B,A) or
// coll(A,A,B), are entailed even over unknown points or segments.
func (db *Database) Prove(p ir.Predicate) bool {
	if f, ok := db.LookupFact(p); ok && db.ContainsFact(f) {
		return true
	}
	return trivial(p)
}

// trivial reports whether p holds in an empty database.
func trivial(p ir.Predicate) bool {
	scratch := New()
	f, err := scratch.FromPredicate(p)
	return err == nil && scratch.ContainsFact(f)
}

func (db *Database) buildFact(
	kind ir.Kind,
	pts []ir.Point,
	line func(a, b ir.Point) ir.LineID,
	cong func(a, b ir.Point) ir.CongID,
) (ir.Fact, error) {
	switch kind {
	case ir.KindColl:
		return ir.Coll{Points: pts}, nil
	case ir.KindCong:
		return ir.Cong{S1: ir.NewSegment(pts[0], pts[1]), S2: ir.NewSegment(pts[2], pts[3])}, nil
	case ir.KindMidp:
		return ir.Midp{M: pts[0], A: pts[1], B: pts[2]}, nil
	case ir.KindPara:
		return ir.Para{L1: line(pts[0], pts[1]), L2: line(pts[2], pts[3])}, nil
	case ir.KindPerp:
		return ir.Perp{L1: line(pts[0], pts[1]), L2: line(pts[2], pts[3])}, nil
	case ir.KindEqAngle:
		return ir.EqAngle{
			A1: ir.Angle{L1: line(pts[0], pts[1]), L2: line(pts[2], pts[3])},
			A2: ir.Angle{L1: line(pts[4], pts[5]), L2: line(pts[6], pts[7])},
		}, nil
	case ir.KindEqRatio:
		return ir.EqRatio{
			R1: ir.Ratio{C1: cong(pts[0], pts[1]), C2: cong(pts[2], pts[3])},
			R2: ir.Ratio{C1: cong(pts[4], pts[5]), C2: cong(pts[6], pts[7])},
		}, nil
	case ir.KindSimTri:
		return ir.SimTri{T1: ir.Triangle{pts[0], pts[1], pts[2]}, T2: ir.Triangle{pts[3], pts[4], pts[5]}}, nil
	case ir.KindConTri:
		return ir.ConTri{T1: ir.Triangle{pts[0], pts[1], pts[2]}, T2: ir.Triangle{pts[3], pts[4], pts[5]}}, nil
	case ir.KindCyclic:
		return ir.Cyclic{Points: pts}, nil
	case ir.KindCircle:
		return ir.Circle{Center: pts[0], Points: pts[1:]}, nil
	}
	return nil, &ir.UnknownKindError{Tag: kind.String()}
}

// Phrase renders a fact as a point-level predicate. Lines are named by
// their two lowest points and congruence classes by their first segment.
func (db *Database) Phrase(f ir.Fact) ir.Predicate {
	var names []string
	add := func(pts ...ir.Point) {
		for _, p := range pts {
			names = append(names, db.PointName(p))
		}
	}
	line := func(l ir.LineID) {
		pts := db.LinePoints(l)
		switch len(pts) {
		case 0:
			names = append(names, db.LineName(l), db.LineName(l))
		case 1:
			add(pts[0], pts[0])
		default:
			add(pts[0], pts[1])
		}
	}
	cong := func(c ir.CongID) {
		segs := db.CongSegments(c)
		if len(segs) == 0 {
			names = append(names, db.CongName(c), db.CongName(c))
			return
		}
		add(segs[0].P1, segs[0].P2)
	}

	switch f := f.(type) {
	case ir.Coll:
		add(f.Points...)
	case ir.Cong:
		add(f.S1.P1, f.S1.P2, f.S2.P1, f.S2.P2)
	case ir.Midp:
		add(f.M, f.A, f.B)
	case ir.Para:
		line(f.L1)
		line(f.L2)
	case ir.Perp:
		line(f.L1)
		line(f.L2)
	case ir.EqAngle:
		line(f.A1.L1)
		line(f.A1.L2)
		line(f.A2.L1)
		line(f.A2.L2)
	case ir.EqRatio:
		cong(f.R1.C1)
		cong(f.R1.C2)
		cong(f.R2.C1)
		cong(f.R2.C2)
	case ir.SimTri:
		add(f.T1[:]...)
		add(f.T2[:]...)
	case ir.ConTri:
		add(f.T1[:]...)
		add(f.T2[:]...)
	case ir.Cyclic:
		add(f.Points...)
	case ir.Circle:
		add(f.Center)
		add(f.Points...)
	}
	return ir.Predicate{Kind: f.Kind(), Points: names}
}

// Describe renders a fact for logs.
func (db *Database) Describe(f ir.Fact) string {
	return fmt.Sprint(db.Phrase(f))
}
