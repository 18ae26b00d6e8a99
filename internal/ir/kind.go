package ir

import "fmt"

// Kind tags a predicate or fact. The numeric order is the processing
// priority of the forward-chaining worklist: cheap, broadly enabling kinds
// first.
type Kind int

const (
	KindColl Kind = iota + 1
	KindCong
	KindMidp
	KindPara
	KindPerp
	KindEqAngle
	KindEqRatio
	KindSimTri
	KindConTri
	KindCyclic
	KindCircle
)

var kindNames = [...]string{
	KindColl:    "coll",
	KindCong:    "cong",
	KindMidp:    "midp",
	KindPara:    "para",
	KindPerp:    "perp",
	KindEqAngle: "eqangle",
	KindEqRatio: "eqratio",
	KindSimTri:  "simtri",
	KindConTri:  "contri",
	KindCyclic:  "cyclic",
	KindCircle:  "circle",
}

// Kinds returns every kind in priority order.
func Kinds() []Kind {
	return []Kind{
		KindColl, KindCong, KindMidp, KindPara, KindPerp, KindEqAngle,
		KindEqRatio, KindSimTri, KindConTri, KindCyclic, KindCircle,
	}
}

// String returns the predicate tag, e.g. "eqangle".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindColl && k <= KindCircle
}

// Less orders kinds by worklist priority.
func (k Kind) Less(other Kind) bool {
	return k < other
}

// Compare returns -1, 0 or +1 as k sorts before, with or after other.
func (k Kind) Compare(other Kind) int {
	switch {
	case k.Less(other):
		return -1
	case other.Less(k):
		return 1
	}
	return 0
}

// Arity returns the point count a predicate of this kind takes. When
// variadic is true, n is a lower bound.
func (k Kind) Arity() (n int, variadic bool) {
	switch k {
	case KindColl:
		return 3, true
	case KindMidp:
		return 3, false
	case KindCong, KindPara, KindPerp:
		return 4, false
	case KindSimTri, KindConTri:
		return 6, false
	case KindEqAngle, KindEqRatio:
		return 8, false
	case KindCyclic, KindCircle:
		return 4, true
	default:
		return 0, false
	}
}

// ParseKind resolves a predicate tag.
func ParseKind(tag string) (Kind, error) {
	for k := KindColl; k <= KindCircle; k++ {
		if kindNames[k] == tag {
			return k, nil
		}
	}
	return 0, &UnknownKindError{Tag: tag}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
