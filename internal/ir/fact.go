package ir

// Fact is a stored statement over points, lines, length classes, angles,
// ratios or triangles. It is a closed union: only the types in this file
// implement it, and consumers switch on the concrete type.
type Fact interface {
	Kind() Kind
	isFact()
}

// Coll states that every point lies on one line.
type Coll struct {
	Points []Point
}

// Cong states that two segments have equal length.
type Cong struct {
	S1, S2 Segment
}

// Midp states that M is the midpoint of AB.
type Midp struct {
	M, A, B Point
}

// Para states that two lines are parallel.
type Para struct {
	L1, L2 LineID
}

// Perp states that two lines are perpendicular.
type Perp struct {
	L1, L2 LineID
}

// EqAngle states that two directed angles are equal.
type EqAngle struct {
	A1, A2 Angle
}

// EqRatio states that two length ratios are equal.
type EqRatio struct {
	R1, R2 Ratio
}

// SimTri states that T1 and T2 are similar with vertex i of T1
// corresponding to vertex i of T2.
type SimTri struct {
	T1, T2 Triangle
}

// ConTri states that T1 and T2 are congruent, with the same
// correspondence as SimTri.
type ConTri struct {
	T1, T2 Triangle
}

// Cyclic states that the points lie on one circle.
type Cyclic struct {
	Points []Point
}

// Circle states that the points lie on the circle centered at Center.
type Circle struct {
	Center Point
	Points []Point
}

func (Coll) Kind() Kind    { return KindColl }
func (Cong) Kind() Kind    { return KindCong }
func (Midp) Kind() Kind    { return KindMidp }
func (Para) Kind() Kind    { return KindPara }
func (Perp) Kind() Kind    { return KindPerp }
func (EqAngle) Kind() Kind { return KindEqAngle }
func (EqRatio) Kind() Kind { return KindEqRatio }
func (SimTri) Kind() Kind  { return KindSimTri }
func (ConTri) Kind() Kind  { return KindConTri }
func (Cyclic) Kind() Kind  { return KindCyclic }
func (Circle) Kind() Kind  { return KindCircle }

func (Coll) isFact()    {}
func (Cong) isFact()    {}
func (Midp) isFact()    {}
func (Para) isFact()    {}
func (Perp) isFact()    {}
func (EqAngle) isFact() {}
func (EqRatio) isFact() {}
func (SimTri) isFact()  {}
func (ConTri) isFact()  {}
func (Cyclic) isFact()  {}
func (Circle) isFact()  {}

// Form is one concrete arrangement of a stored fact handed to rules.
// Point-level kinds fill Points; para, perp and eqangle fill Lines;
// eqratio fills Congs. Para and perp forms also fill Points with one
// point pair per line.
type Form struct {
	Kind   Kind
	Points []Point
	Lines  []LineID
	Congs  []CongID
}
