package rules

import "github.com/JiajunSong-Bigai/inference-engine/internal/ir"

// Reader is the view of the fact database that rules need. Rules never add
// facts through it; MatchLine and MatchCong may allocate a two-point line or
// a one-segment class so that a conclusion can name it.
type Reader interface {
	ContainsFact(f ir.Fact) bool

	Points() []ir.Point

	MatchLine(a, b ir.Point) ir.LineID
	LookupLine(a, b ir.Point) (ir.LineID, bool)
	Lines() []ir.LineID
	LinePoints(l ir.LineID) []ir.Point
	LineIntersection(l1, l2 ir.LineID) []ir.Point

	MatchCong(a, b ir.Point) ir.CongID
	LookupCong(a, b ir.Point) (ir.CongID, bool)
	CongSegments(c ir.CongID) []ir.Segment

	ParallelTo(l ir.LineID) []ir.LineID
	PerpPairs() [][2]ir.LineID
	PerpendicularTo(l ir.LineID) []ir.LineID
	AngleGroups() [][]ir.Angle
	AngleGroupOf(a ir.Angle) []ir.Angle
	RatioGroupOf(r ir.Ratio) []ir.Ratio
	Midpoints() []ir.Midp
}
