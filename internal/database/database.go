// Package database is the canonical store of accepted geometric facts.
//
// Points are interned names. Collinear points form line groups and equal
// segments form congruence classes, both as union-find structures over
// dense integer ids. Parallel lines, equal angles and equal ratios are
// kept as classes keyed by resolved ids and re-keyed whenever a line or
// congruence merge changes a representative. Similar and congruent
// triangles are kept as rotation-weighted union-find groups; circles and
// midpoints are point-level.
//
// A Database is not safe for concurrent use.
package database

import (
	"fmt"
	"slices"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Database owns every accepted fact and equivalence-class group.
type Database struct {
	names []string
	ids   map[string]ir.Point

	lines  *lineStore
	congs  *congStore
	para   *classes[ir.LineID]
	perp   map[[2]ir.LineID]struct{}
	angles *classes[ir.Angle]
	ratios *classes[ir.Ratio]
	sim    *triangleGroups
	con    *triangleGroups
	circ   *circleStore
	midps  []ir.Midp
	midpOf map[[3]ir.Point]struct{}

	gen Generation
}

// New returns an empty database.
func New() *Database {
	return &Database{
		ids:    make(map[string]ir.Point),
		lines:  newLineStore(),
		congs:  newCongStore(),
		para:   newClasses[ir.LineID](),
		perp:   make(map[[2]ir.LineID]struct{}),
		angles: newClasses[ir.Angle](),
		ratios: newClasses[ir.Ratio](),
		sim:    newTriangleGroups(),
		con:    newTriangleGroups(),
		circ:   &circleStore{},
		midpOf: make(map[[3]ir.Point]struct{}),
	}
}

// Intern returns the point for name, allocating it on first use.
func (db *Database) Intern(name string) ir.Point {
	name = ir.NormalizeName(name)
	if p, ok := db.ids[name]; ok {
		return p
	}
	p := ir.Point(len(db.names))
	db.names = append(db.names, name)
	db.ids[name] = p
	return p
}

// LookupPoint returns the point for name without allocating.
func (db *Database) LookupPoint(name string) (ir.Point, bool) {
	p, ok := db.ids[ir.NormalizeName(name)]
	return p, ok
}

// PointName renders a point.
func (db *Database) PointName(p ir.Point) string {
	if int(p) < len(db.names) {
		return db.names[p]
	}
	return fmt.Sprintf("p%d", p)
}

// Points returns every interned point in allocation order.
func (db *Database) Points() []ir.Point {
	out := make([]ir.Point, len(db.names))
	for i := range out {
		out[i] = ir.Point(i)
	}
	return out
}

// LineName renders a line id.
func (db *Database) LineName(l ir.LineID) string {
	return fmt.Sprintf("line%d", db.ResolveLine(l))
}

// CongName renders a congruence class id.
func (db *Database) CongName(c ir.CongID) string {
	return fmt.Sprintf("cong%d", db.ResolveCong(c))
}

// Generation returns the current generation.
func (db *Database) Generation() uint64 {
	return db.gen.Current()
}

// Bump advances the generation and returns the new value.
func (db *Database) Bump() uint64 {
	return db.gen.Next()
}

// MatchLine returns the line through a and b, creating a two-point line
// when none exists.
func (db *Database) MatchLine(a, b ir.Point) ir.LineID {
	if l, ok := db.lines.lookup(a, b); ok {
		return l
	}
	return db.lines.create(a, b)
}

// LookupLine returns the line through a and b if one exists.
func (db *Database) LookupLine(a, b ir.Point) (ir.LineID, bool) {
	return db.lines.lookup(a, b)
}

// ResolveLine returns the current representative of l.
func (db *Database) ResolveLine(l ir.LineID) ir.LineID {
	if !db.lines.valid(l) {
		return l
	}
	return db.lines.find(l)
}

// MatchCong returns the congruence class of segment ab, creating a
// one-segment class when none exists.
func (db *Database) MatchCong(a, b ir.Point) ir.CongID {
	return db.congs.match(ir.NewSegment(a, b))
}

// LookupCong returns the congruence class of segment ab if one exists.
func (db *Database) LookupCong(a, b ir.Point) (ir.CongID, bool) {
	return db.congs.lookup(ir.NewSegment(a, b))
}

// ResolveCong returns the current representative of c.
func (db *Database) ResolveCong(c ir.CongID) ir.CongID {
	if !db.congs.valid(c) {
		return c
	}
	return db.congs.find(c)
}

// LineIntersection returns the points shared by two distinct lines in
// ascending order. It is empty for the same line or unknown ids.
func (db *Database) LineIntersection(l1, l2 ir.LineID) []ir.Point {
	if !db.lines.valid(l1) || !db.lines.valid(l2) {
		return nil
	}
	return db.lines.intersection(l1, l2)
}

// Lines returns every live line in ascending id order.
func (db *Database) Lines() []ir.LineID {
	return db.lines.roots()
}

// LinePoints returns the points on l in ascending order.
func (db *Database) LinePoints(l ir.LineID) []ir.Point {
	if !db.lines.valid(l) {
		return nil
	}
	return db.lines.pointsOf(l)
}

// Congs returns every live congruence class in ascending id order.
func (db *Database) Congs() []ir.CongID {
	return db.congs.roots()
}

// CongSegments returns the segments of c.
func (db *Database) CongSegments(c ir.CongID) []ir.Segment {
	if !db.congs.valid(c) {
		return nil
	}
	return db.congs.segments(c)
}

// ParaGroups returns the classes of mutually parallel lines.
func (db *Database) ParaGroups() [][]ir.LineID {
	return db.para.list()
}

// ParallelTo returns the lines parallel to l, including l, or nil.
func (db *Database) ParallelTo(l ir.LineID) []ir.LineID {
	return db.para.groupOf(db.ResolveLine(l))
}

// PerpPairs returns every perpendicular pair with the lower id first.
func (db *Database) PerpPairs() [][2]ir.LineID {
	out := make([][2]ir.LineID, 0, len(db.perp))
	for k := range db.perp {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b [2]ir.LineID) int {
		if a[0] != b[0] {
			return int(a[0]) - int(b[0])
		}
		return int(a[1]) - int(b[1])
	})
	return out
}

// PerpendicularTo returns the lines recorded perpendicular to l.
func (db *Database) PerpendicularTo(l ir.LineID) []ir.LineID {
	l = db.ResolveLine(l)
	var out []ir.LineID
	for _, pair := range db.PerpPairs() {
		switch l {
		case pair[0]:
			out = append(out, pair[1])
		case pair[1]:
			out = append(out, pair[0])
		}
	}
	return out
}

// AngleGroups returns the classes of equal angles.
func (db *Database) AngleGroups() [][]ir.Angle {
	return db.angles.list()
}

// AngleGroupOf returns the angles equal to a, including a, or nil.
func (db *Database) AngleGroupOf(a ir.Angle) []ir.Angle {
	return db.angles.groupOf(db.resolveAngle(a))
}

// RatioGroups returns the classes of equal ratios.
func (db *Database) RatioGroups() [][]ir.Ratio {
	return db.ratios.list()
}

// RatioGroupOf returns the ratios equal to r, including r, or nil.
func (db *Database) RatioGroupOf(r ir.Ratio) []ir.Ratio {
	return db.ratios.groupOf(db.resolveRatio(r))
}

// SimTriGroups returns similar-triangle groups with members aligned vertex
// by vertex.
func (db *Database) SimTriGroups() [][]ir.Triangle {
	return db.sim.groups()
}

// ConTriGroups returns congruent-triangle groups with members aligned
// vertex by vertex.
func (db *Database) ConTriGroups() [][]ir.Triangle {
	return db.con.groups()
}

// CircleInfo is a read-only view of one circle.
type CircleInfo struct {
	Center    ir.Point
	HasCenter bool
	Points    []ir.Point
}

// Circles returns every circle.
func (db *Database) Circles() []CircleInfo {
	live := db.circ.live()
	out := make([]CircleInfo, len(live))
	for i, c := range live {
		out[i] = CircleInfo{Center: c.center, HasCenter: c.hasCenter, Points: bitmapPoints(c.points)}
	}
	return out
}

// Midpoints returns every midpoint fact in insertion order, endpoints
// ascending.
func (db *Database) Midpoints() []ir.Midp {
	return slices.Clone(db.midps)
}

// Stats counts the stored structures.
type Stats struct {
	Points      int    `json:"points"`
	Lines       int    `json:"lines"`
	Congs       int    `json:"congs"`
	ParaGroups  int    `json:"para_groups"`
	PerpPairs   int    `json:"perp_pairs"`
	AngleGroups int    `json:"angle_groups"`
	RatioGroups int    `json:"ratio_groups"`
	SimTri      int    `json:"simtri_groups"`
	ConTri      int    `json:"contri_groups"`
	Circles     int    `json:"circles"`
	Midpoints   int    `json:"midpoints"`
	Generation  uint64 `json:"generation"`
}

// Stats returns the current structure counts.
func (db *Database) Stats() Stats {
	return Stats{
		Points:      len(db.names),
		Lines:       len(db.lines.roots()),
		Congs:       len(db.congs.roots()),
		ParaGroups:  db.para.size(),
		PerpPairs:   len(db.perp),
		AngleGroups: db.angles.size(),
		RatioGroups: db.ratios.size(),
		SimTri:      len(db.sim.groups()),
		ConTri:      len(db.con.groups()),
		Circles:     len(db.circ.live()),
		Midpoints:   len(db.midps),
		Generation:  db.gen.Current(),
	}
}

// Facts returns one stored fact per group, in kind priority order. AllForms
// of each covers its whole group, so expanding every returned fact puts all
// accepted knowledge in front of the rules.
func (db *Database) Facts() []ir.Fact {
	var out []ir.Fact
	for _, kind := range ir.Kinds() {
		switch kind {
		case ir.KindColl:
			for _, l := range db.Lines() {
				if pts := db.LinePoints(l); len(pts) >= 3 {
					out = append(out, ir.Coll{Points: pts})
				}
			}
		case ir.KindCong:
			for _, c := range db.Congs() {
				if segs := db.CongSegments(c); len(segs) >= 2 {
					out = append(out, ir.Cong{S1: segs[0], S2: segs[1]})
				}
			}
		case ir.KindMidp:
			for _, m := range db.midps {
				out = append(out, m)
			}
		case ir.KindPara:
			for _, g := range db.para.list() {
				out = append(out, ir.Para{L1: g[0], L2: g[1]})
			}
		case ir.KindPerp:
			for _, pair := range db.PerpPairs() {
				out = append(out, ir.Perp{L1: pair[0], L2: pair[1]})
			}
		case ir.KindEqAngle:
			for _, g := range db.angles.list() {
				out = append(out, ir.EqAngle{A1: g[0], A2: g[1]})
			}
		case ir.KindEqRatio:
			for _, g := range db.ratios.list() {
				out = append(out, ir.EqRatio{R1: g[0], R2: g[1]})
			}
		case ir.KindSimTri:
			for _, g := range db.sim.groups() {
				out = append(out, ir.SimTri{T1: g[0], T2: g[1]})
			}
		case ir.KindConTri:
			for _, g := range db.con.groups() {
				out = append(out, ir.ConTri{T1: g[0], T2: g[1]})
			}
		case ir.KindCyclic:
			for _, c := range db.circ.live() {
				if c.points.GetCardinality() >= 4 {
					out = append(out, ir.Cyclic{Points: bitmapPoints(c.points)})
				}
			}
		case ir.KindCircle:
			for _, c := range db.circ.live() {
				if c.hasCenter {
					out = append(out, ir.Circle{Center: c.center, Points: bitmapPoints(c.points)})
				}
			}
		}
	}
	return out
}

func (db *Database) resolveAngle(a ir.Angle) ir.Angle {
	return ir.Angle{L1: db.ResolveLine(a.L1), L2: db.ResolveLine(a.L2)}
}

func (db *Database) resolveRatio(r ir.Ratio) ir.Ratio {
	return ir.Ratio{C1: db.ResolveCong(r.C1), C2: db.ResolveCong(r.C2)}
}

func (db *Database) perpKey(l1, l2 ir.LineID) [2]ir.LineID {
	l1, l2 = db.ResolveLine(l1), db.ResolveLine(l2)
	if l2 < l1 {
		l1, l2 = l2, l1
	}
	return [2]ir.LineID{l1, l2}
}

// rekeyLines rewrites every structure keyed by line ids after a merge.
func (db *Database) rekeyLines() {
	db.para.rekey(db.ResolveLine)
	db.angles.rekey(db.resolveAngle)
	perp := make(map[[2]ir.LineID]struct{}, len(db.perp))
	for k := range db.perp {
		nk := db.perpKey(k[0], k[1])
		if nk[0] != nk[1] {
			perp[nk] = struct{}{}
		}
	}
	db.perp = perp
}

// rekeyCongs rewrites ratio groups after a congruence merge.
func (db *Database) rekeyCongs() {
	db.ratios.rekey(db.resolveRatio)
}
