// Package rules holds the deduction rules of the reasoner.
//
// A rule consumes one arrangement (ir.Form) of an accepted fact, reads the
// database through Reader, and proposes zero or more conclusions. Rules are
// pure with respect to accepted facts: the driver decides which conclusions
// are new and adds them.
//
// Permutation and transitivity rules are absent from the catalog because
// the database stores lines, congruences, parallels, angles and ratios as
// canonical groups.
package rules

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Rule is one catalog entry.
type Rule struct {
	// ID is unique within a catalog, e.g. "D44".
	ID string

	// Premise is the kind of form the rule consumes.
	Premise ir.Kind

	// Statement is the rule in predicate notation, for listings.
	Statement string

	// Disabled rules are declared but never fire.
	Disabled bool

	// LineLevel rules on para and perp read only Form.Lines, so one run per
	// line pair is enough no matter how many point arrangements exist.
	LineLevel bool

	Apply func(db Reader, f ir.Form) []ir.Fact
}

// Conclusion is a proposed fact and the rule that proposed it.
type Conclusion struct {
	Rule string
	Fact ir.Fact
}

// Catalog is an ordered rule set indexed by premise kind.
type Catalog struct {
	rules  []Rule
	byKind map[ir.Kind][]int
}

// DuplicateRuleError reports a rule id declared twice.
type DuplicateRuleError struct {
	ID string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("duplicate rule id %q", e.ID)
}

// UnknownRuleError reports a rule id that is not in the catalog.
type UnknownRuleError struct {
	ID string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown rule %q", e.ID)
}

// NewCatalog validates and indexes rules, keeping declaration order.
func NewCatalog(rules []Rule) (*Catalog, error) {
	c := &Catalog{
		rules:  slices.Clone(rules),
		byKind: make(map[ir.Kind][]int),
	}
	seen := make(map[string]bool, len(rules))
	for i, r := range c.rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: empty id", i)
		}
		if seen[r.ID] {
			return nil, &DuplicateRuleError{ID: r.ID}
		}
		seen[r.ID] = true
		if !r.Premise.Valid() {
			return nil, fmt.Errorf("rule %s: invalid premise kind %d", r.ID, int(r.Premise))
		}
		if r.Apply == nil && !r.Disabled {
			return nil, fmt.Errorf("rule %s: no body", r.ID)
		}
		c.byKind[r.Premise] = append(c.byKind[r.Premise], i)
	}
	return c, nil
}

var defaultCatalog = mustCatalog(declared)

func mustCatalog(rules []Rule) *Catalog {
	c, err := NewCatalog(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Rules returns every rule in declaration order.
func (c *Catalog) Rules() []Rule {
	return slices.Clone(c.rules)
}

// For returns the rules consuming kind, in declaration order.
func (c *Catalog) For(kind ir.Kind) []Rule {
	idx := c.byKind[kind]
	out := make([]Rule, len(idx))
	for i, j := range idx {
		out[i] = c.rules[j]
	}
	return out
}

// Lookup returns the rule with the given id.
func (c *Catalog) Lookup(id string) (Rule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Without returns a copy of the catalog with the named rules disabled.
func (c *Catalog) Without(ids ...string) (*Catalog, error) {
	rules := slices.Clone(c.rules)
	for _, id := range ids {
		i := slices.IndexFunc(rules, func(r Rule) bool { return r.ID == id })
		if i < 0 {
			return nil, &UnknownRuleError{ID: id}
		}
		rules[i].Disabled = true
	}
	return NewCatalog(rules)
}

// Deduce runs every enabled rule for the form's kind and returns the
// conclusions in rule declaration order.
func (c *Catalog) Deduce(db Reader, form ir.Form) []ir.Fact {
	var out []ir.Fact
	for _, i := range c.byKind[form.Kind] {
		r := &c.rules[i]
		if r.Disabled {
			continue
		}
		out = append(out, r.Apply(db, form)...)
	}
	return out
}

// DeduceAll runs the catalog over every form of one fact. Line-level rules
// run once per distinct line pair.
func (c *Catalog) DeduceAll(db Reader, forms []ir.Form) []Conclusion {
	var out []Conclusion
	seen := make(map[string]struct{})
	for _, form := range forms {
		for _, i := range c.byKind[form.Kind] {
			r := &c.rules[i]
			if r.Disabled {
				continue
			}
			if r.LineLevel {
				key := lineKey(r.ID, form.Lines)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
			}
			for _, f := range r.Apply(db, form) {
				out = append(out, Conclusion{Rule: r.ID, Fact: f})
			}
		}
	}
	return out
}

func lineKey(id string, lines []ir.LineID) string {
	var b strings.Builder
	b.WriteString(id)
	for _, l := range lines {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(l), 10))
	}
	return b.String()
}

// Deduce runs the built-in catalog on one form.
func Deduce(db Reader, form ir.Form) []ir.Fact {
	return defaultCatalog.Deduce(db, form)
}

var declared = []Rule{
	{ID: "D67coll", Premise: ir.KindColl, Statement: "coll(A,B,C) & cong(A,B,A,C) => midp(A,B,C)", Apply: ruleD67coll},

	{ID: "D44", Premise: ir.KindMidp, Statement: "midp(E,A,B) & midp(F,A,C) & ~coll(A,B,C) => para(E,F,B,C)", Apply: ruleD44},
	{ID: "D63", Premise: ir.KindMidp, Statement: "midp(M,A,B) & midp(M,C,D) => para(A,C,B,D)", Apply: ruleD63},
	{ID: "D68", Premise: ir.KindMidp, Statement: "midp(M,A,B) => cong(M,A,M,B)", Apply: ruleD68},
	{ID: "D69", Premise: ir.KindMidp, Statement: "midp(M,A,B) => coll(M,A,B)", Apply: ruleD69},
	{ID: "D70", Premise: ir.KindMidp, Statement: "midp(M,A,B) & midp(N,C,D) => eqratio(M,A,A,B,N,C,C,D)", Apply: ruleD70},
	{ID: "D52midp", Premise: ir.KindMidp, Statement: "midp(M,A,C) & perp(A,B,B,C) => cong(A,M,B,M)", Apply: ruleD52midp},

	{ID: "D40", Premise: ir.KindPara, Statement: "para(A,B,C,D) => eqangle(A,B,P,Q,C,D,P,Q)", LineLevel: true, Apply: ruleD40},
	{ID: "D10para", Premise: ir.KindPara, Statement: "para(A,B,C,D) & perp(C,D,E,F) => perp(A,B,E,F)", LineLevel: true, Apply: ruleD10para},
	{ID: "D64", Premise: ir.KindPara, Statement: "para(A,C,B,D) & para(A,D,B,C) & midp(M,A,B) => midp(M,C,D)", Apply: ruleD64},
	{ID: "D65", Premise: ir.KindPara, Statement: "para(A,B,C,D) & coll(O,A,C) & coll(O,B,D) => eqratio(O,A,A,C,O,B,B,D)", Apply: ruleD65},
	{ID: "D66", Premise: ir.KindPara, Statement: "para(A,B,A,C) => coll(A,B,C)", Apply: ruleD66},

	{ID: "D09", Premise: ir.KindPerp, Statement: "perp(A,B,C,D) & perp(C,D,E,F) => para(A,B,E,F)", LineLevel: true, Apply: ruleD09},
	{ID: "D10perp", Premise: ir.KindPerp, Statement: "perp(C,D,E,F) & para(A,B,C,D) => perp(A,B,E,F)", LineLevel: true, Apply: ruleD10perp},
	{ID: "D52perp", Premise: ir.KindPerp, Statement: "perp(A,B,B,C) & midp(M,A,C) => cong(A,M,B,M)", Apply: ruleD52perp},
	{ID: "D55perp", Premise: ir.KindPerp, Statement: "perp(O,M,A,B) & midp(M,A,B) => cong(O,A,O,B)", Apply: ruleD55perp},
	{ID: "X2", Premise: ir.KindPerp, Statement: "perp(A,B,C,D) & perp(P,Q,U,V) => eqangle(A,B,C,D,P,Q,U,V)", LineLevel: true, Apply: ruleX2},
	{ID: "X3", Premise: ir.KindPerp, Statement: "perp(A,B,C,D) => eqangle(A,B,C,D,C,D,A,B)", LineLevel: true, Apply: ruleX3},

	{ID: "D22", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,C,D,P,Q,U,V) & eqangle(P,Q,U,V,E,F,G,H) => eqangle(A,B,C,D,E,F,G,H)", Apply: ruleD22},
	{ID: "D39", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,P,Q,C,D,P,Q) => para(A,B,C,D)", Apply: ruleD39},
	{ID: "D47", Premise: ir.KindEqAngle, Statement: "eqangle(O,A,A,B,A,B,O,B) => cong(O,A,O,B)", Apply: ruleD47},
	{ID: "D58", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,B,C,P,Q,Q,R) & eqangle(A,C,B,C,P,R,Q,R) => simtri(A,B,C,P,Q,R)", Apply: ruleD58},
	{ID: "X1", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,B,C,P,Q,Q,R) & cong(A,B,P,Q) & cong(B,C,Q,R) => contri(A,B,C,P,Q,R)", Apply: ruleX1},
	{ID: "D71", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,C,D,C,D,A,B) & ~para(A,B,C,D) => perp(A,B,C,D)", Apply: ruleD71},
	{ID: "D72", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,C,D,C,D,A,B) & ~perp(A,B,C,D) => para(A,B,C,D)", Disabled: true},
	{ID: "D73", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,C,D,P,Q,U,V) & para(P,Q,U,V) => para(A,B,C,D)", Apply: ruleD73},
	{ID: "D74", Premise: ir.KindEqAngle, Statement: "eqangle(A,B,C,D,P,Q,U,V) & perp(P,Q,U,V) => perp(A,B,C,D)", Apply: ruleD74},
	{ID: "D42a", Premise: ir.KindEqAngle, Statement: "eqangle(P,A,P,B,Q,A,Q,B) & ~coll(P,Q,A) => cyclic(A,B,P,Q)", Apply: ruleD42a},

	{ID: "D12", Premise: ir.KindCong, Statement: "cong(O,A,O,B) & cong(O,A,O,C) => circle(O,A,B,C)", Apply: ruleD12},
	{ID: "D46", Premise: ir.KindCong, Statement: "cong(O,A,O,B) & ~coll(O,A,B) => eqangle(O,A,A,B,A,B,O,B)", Apply: ruleD46},
	{ID: "D75cong", Premise: ir.KindCong, Statement: "cong(P,Q,U,V) & eqratio(A,B,C,D,P,Q,U,V) => cong(A,B,C,D)", Apply: ruleD75cong},
	{ID: "X4", Premise: ir.KindCong, Statement: "cong(M,A,M,B) & coll(M,A,B) => midp(M,A,B)", Apply: ruleX4},
	{ID: "D56", Premise: ir.KindCong, Statement: "cong(A,P,B,P) & cong(A,Q,B,Q) => perp(A,B,P,Q)", Apply: ruleD56},

	{ID: "D41", Premise: ir.KindCyclic, Statement: "cyclic(A,B,P,Q) => eqangle(P,A,P,B,Q,A,Q,B)", Apply: ruleD41},

	{ID: "D59", Premise: ir.KindSimTri, Statement: "simtri(A,B,C,P,Q,R) => eqratio(A,B,A,C,P,Q,P,R)", Apply: ruleD59},
	{ID: "D60", Premise: ir.KindSimTri, Statement: "simtri(A,B,C,P,Q,R) => eqangle(A,B,A,C,P,Q,P,R)", Apply: ruleD60},
	{ID: "D61", Premise: ir.KindSimTri, Statement: "simtri(A,B,C,P,Q,R) & cong(A,B,P,Q) => contri(A,B,C,P,Q,R)", Apply: ruleD61},

	{ID: "D62", Premise: ir.KindConTri, Statement: "contri(A,B,C,P,Q,R) => cong(A,B,P,Q)", Apply: ruleD62},

	{ID: "D75eqratio", Premise: ir.KindEqRatio, Statement: "eqratio(A,B,C,D,P,Q,U,V) & cong(P,Q,U,V) => cong(A,B,C,D)", Apply: ruleD75eqratio},
}

// distinct reports whether no point repeats.
func distinct(pts ...ir.Point) bool {
	for i, p := range pts {
		if slices.Contains(pts[i+1:], p) {
			return false
		}
	}
	return true
}

func onLine(db Reader, l ir.LineID, p ir.Point) bool {
	return slices.Contains(db.LinePoints(l), p)
}

// meet returns the point shared by two distinct lines.
func meet(db Reader, l1, l2 ir.LineID) (ir.Point, bool) {
	if l1 == l2 {
		return 0, false
	}
	pts := db.LineIntersection(l1, l2)
	if len(pts) == 0 {
		return 0, false
	}
	return pts[0], true
}

// pointsThrough lists the points on the stored line through a and b.
// A line that does not exist yet holds no third point, so nil is returned.
func pointsThrough(db Reader, a, b ir.Point) []ir.Point {
	l, ok := db.LookupLine(a, b)
	if !ok || a == b {
		return nil
	}
	return db.LinePoints(l)
}

func sameEndpoints(m ir.Midp, a, b ir.Point) bool {
	return (m.A == a && m.B == b) || (m.A == b && m.B == a)
}
