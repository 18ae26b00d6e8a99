package engine

import (
	"context"
	"fmt"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// Replay and determinism
//
// A run is a pure function of its hypotheses, the rule catalog and the
// iteration ceiling: the queue order, rule order and group iteration order
// are all fixed. Rerunning a recorded problem on a fresh database must
// therefore accept the same facts, from the same rules, at the same
// generations.
//
// Journals keep one row per distinct phrasing (content hash), so both
// sides are reduced with Journaled before they are compared.

// Divergence is the first position at which a replay departs from a
// recorded run. Recorded is empty when the replay accepted more facts,
// Replayed is empty when it stopped short.
type Divergence struct {
	Index    int    `json:"index"`
	Recorded string `json:"recorded,omitempty"`
	Replayed string `json:"replayed,omitempty"`
}

// String implements fmt.Stringer.
func (d *Divergence) String() string {
	switch {
	case d.Recorded == "":
		return fmt.Sprintf("fact %d: replay accepted extra %s", d.Index, d.Replayed)
	case d.Replayed == "":
		return fmt.Sprintf("fact %d: replay stopped before %s", d.Index, d.Recorded)
	default:
		return fmt.Sprintf("fact %d: recorded %s, replayed %s", d.Index, d.Recorded, d.Replayed)
	}
}

// Journaled reduces derivations to what a journal stores: the first
// derivation of each distinct predicate, in order.
func Journaled(increased []Derivation) []Derivation {
	out := make([]Derivation, 0, len(increased))
	seen := make(map[string]struct{}, len(increased))
	for _, d := range increased {
		h := ir.MustHashPredicate(d.Predicate)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Compare returns the first divergence between two derivation sequences,
// or nil when they agree on rule, generation and predicate throughout.
func Compare(recorded, replayed []Derivation) *Divergence {
	n := min(len(recorded), len(replayed))
	for i := 0; i < n; i++ {
		r, p := recorded[i], replayed[i]
		if r.Rule != p.Rule || r.Generation != p.Generation || r.Predicate.String() != p.Predicate.String() {
			return &Divergence{Index: i, Recorded: describe(r), Replayed: describe(p)}
		}
	}
	switch {
	case len(recorded) > n:
		return &Divergence{Index: n, Recorded: describe(recorded[n])}
	case len(replayed) > n:
		return &Divergence{Index: n, Replayed: describe(replayed[n])}
	}
	return nil
}

func describe(d Derivation) string {
	rule := d.Rule
	if rule == "" {
		rule = "given"
	}
	return fmt.Sprintf("%s [%s @%d]", d.Predicate, rule, d.Generation)
}

// Replay reruns hypotheses on a fresh database and compares the journaled
// form of the result with recorded. Stopping at the iteration ceiling is
// part of the replay, not an error; any other run error is returned.
func Replay(ctx context.Context, hypotheses []ir.Predicate, recorded []Derivation, opts ...Option) (*Result, *Divergence, error) {
	d := New(nil, opts...)
	res, err := d.Run(ctx, hypotheses)
	if err != nil && !IsIterationLimitError(err) {
		return res, nil, err
	}
	return res, Compare(recorded, Journaled(res.Increased)), nil
}
