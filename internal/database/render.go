package database

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Dump writes every collection, one section per kind, in a deterministic
// order. Only lines with three or more points are listed as collinear.
func (db *Database) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	section := func(title string, rows []string) {
		fmt.Fprintf(bw, "> %s (%d)\n", title, len(rows))
		for _, r := range rows {
			fmt.Fprintf(bw, "  %s\n", r)
		}
		bw.WriteByte('\n')
	}

	var coll []string
	for _, l := range db.Lines() {
		pts := db.LinePoints(l)
		if len(pts) >= 3 {
			coll = append(coll, fmt.Sprintf("%s: coll(%s)", db.LineName(l), db.pointList(pts)))
		}
	}
	section("coll", coll)

	var cong []string
	for _, c := range db.Congs() {
		segs := db.CongSegments(c)
		if len(segs) < 2 {
			continue
		}
		parts := make([]string, len(segs))
		for i, s := range segs {
			parts[i] = db.segmentName(s)
		}
		cong = append(cong, fmt.Sprintf("%s: cong(%s)", db.CongName(c), strings.Join(parts, " ")))
	}
	section("cong", cong)

	var midp []string
	for _, m := range db.midps {
		midp = append(midp, fmt.Sprintf("midp(%s)", db.pointList([]ir.Point{m.M, m.A, m.B})))
	}
	section("midp", midp)

	var para []string
	for _, g := range db.ParaGroups() {
		parts := make([]string, len(g))
		for i, l := range g {
			parts[i] = db.lineLabel(l)
		}
		para = append(para, fmt.Sprintf("para(%s)", strings.Join(parts, " ")))
	}
	section("para", para)

	var perp []string
	for _, pair := range db.PerpPairs() {
		perp = append(perp, fmt.Sprintf("perp(%s %s)", db.lineLabel(pair[0]), db.lineLabel(pair[1])))
	}
	section("perp", perp)

	var eqangle []string
	for _, g := range db.AngleGroups() {
		parts := make([]string, len(g))
		for i, a := range g {
			parts[i] = fmt.Sprintf("<%s,%s>", db.lineLabel(a.L1), db.lineLabel(a.L2))
		}
		eqangle = append(eqangle, fmt.Sprintf("eqangle(%s)", strings.Join(parts, " ")))
	}
	section("eqangle", eqangle)

	var eqratio []string
	for _, g := range db.RatioGroups() {
		parts := make([]string, len(g))
		for i, r := range g {
			parts[i] = fmt.Sprintf("%s/%s", db.congLabel(r.C1), db.congLabel(r.C2))
		}
		eqratio = append(eqratio, fmt.Sprintf("eqratio(%s)", strings.Join(parts, " ")))
	}
	section("eqratio", eqratio)

	section("simtri", db.triangleRows("simtri", db.SimTriGroups()))
	section("contri", db.triangleRows("contri", db.ConTriGroups()))

	var circles []string
	for _, c := range db.Circles() {
		if c.HasCenter {
			circles = append(circles, fmt.Sprintf("circle(%s; %s)", db.PointName(c.Center), db.pointList(c.Points)))
		} else {
			circles = append(circles, fmt.Sprintf("cyclic(%s)", db.pointList(c.Points)))
		}
	}
	section("circle", circles)

	return bw.Flush()
}

func (db *Database) pointList(pts []ir.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = db.PointName(p)
	}
	return strings.Join(parts, ",")
}

func (db *Database) segmentName(s ir.Segment) string {
	return db.PointName(s.P1) + db.PointName(s.P2)
}

func (db *Database) lineLabel(l ir.LineID) string {
	return "[" + db.pointList(db.LinePoints(l)) + "]"
}

func (db *Database) congLabel(c ir.CongID) string {
	segs := db.CongSegments(c)
	if len(segs) == 0 {
		return db.CongName(c)
	}
	return db.segmentName(segs[0])
}

func (db *Database) triangleRows(kind string, groups [][]ir.Triangle) []string {
	rows := make([]string, 0, len(groups))
	for _, g := range groups {
		parts := make([]string, len(g))
		for i, t := range g {
			parts[i] = db.PointName(t[0]) + db.PointName(t[1]) + db.PointName(t[2])
		}
		rows = append(rows, fmt.Sprintf("%s(%s)", kind, strings.Join(parts, " ")))
	}
	return rows
}
