package ir

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Predicate is a point-level statement such as coll(A,B,C). It is used only
// at the input and query boundary; the database stores Facts.
type Predicate struct {
	Kind   Kind     `json:"kind"`
	Points []string `json:"points"`
}

// NewPredicate builds a predicate and validates its arity. Point names are
// trimmed and NFC normalized.
func NewPredicate(kind Kind, points ...string) (Predicate, error) {
	if !kind.Valid() {
		return Predicate{}, &UnknownKindError{Tag: kind.String()}
	}
	names := make([]string, len(points))
	for i, p := range points {
		name := NormalizeName(p)
		if name == "" {
			return Predicate{}, &PointNameError{Kind: kind, Index: i}
		}
		names[i] = name
	}
	n, variadic := kind.Arity()
	if len(names) < n || (!variadic && len(names) != n) {
		return Predicate{}, &ArityError{Kind: kind, Got: len(names), Want: n, AtLeast: variadic}
	}
	return Predicate{Kind: kind, Points: names}, nil
}

// MustPredicate is NewPredicate that panics on error. For tests and
// static tables.
func MustPredicate(kind Kind, points ...string) Predicate {
	p, err := NewPredicate(kind, points...)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate re-checks a predicate that was built without NewPredicate,
// e.g. decoded from JSON.
func (p Predicate) Validate() error {
	_, err := NewPredicate(p.Kind, p.Points...)
	return err
}

// String renders the predicate in its textual form, e.g. "para(A,B,C,D)".
func (p Predicate) String() string {
	return p.Kind.String() + "(" + strings.Join(p.Points, ",") + ")"
}

// NormalizeName returns the canonical spelling of a point name.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ArityError reports a point list whose length does not match its kind.
type ArityError struct {
	Kind    Kind
	Got     int
	Want    int
	AtLeast bool
}

func (e *ArityError) Error() string {
	if e.AtLeast {
		return fmt.Sprintf("%s takes at least %d points, got %d", e.Kind, e.Want, e.Got)
	}
	return fmt.Sprintf("%s takes %d points, got %d", e.Kind, e.Want, e.Got)
}

// UnknownKindError reports an unrecognized predicate tag.
type UnknownKindError struct {
	Tag string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown predicate kind %q", e.Tag)
}

// PointNameError reports an empty point name.
type PointNameError struct {
	Kind  Kind
	Index int
}

func (e *PointNameError) Error() string {
	return fmt.Sprintf("%s: point %d has an empty name", e.Kind, e.Index+1)
}

// IsArityError returns true if err is or wraps an *ArityError.
func IsArityError(err error) bool {
	var ae *ArityError
	return errors.As(err, &ae)
}
