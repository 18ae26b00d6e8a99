package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// leaves room for algorithm migration.
const (
	DomainPredicate = "euclid/predicate/v1"
	DomainProblem   = "euclid/problem/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashPredicate computes the content address of a predicate. Point order
// is significant: the journal records what was derived, as phrased.
func HashPredicate(p Predicate) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"kind":   p.Kind.String(),
		"points": p.Points,
	})
	if err != nil {
		return "", fmt.Errorf("HashPredicate: %w", err)
	}
	return hashWithDomain(DomainPredicate, canonical), nil
}

// HashProblem computes a stable identity for a problem's hypotheses and
// goals. The name is excluded so renamed copies hash alike.
func HashProblem(p Problem) (string, error) {
	render := func(ps []Predicate) []any {
		out := make([]any, len(ps))
		for i, pr := range ps {
			out[i] = pr.String()
		}
		return out
	}
	canonical, err := MarshalCanonical(map[string]any{
		"hypotheses": render(p.Hypotheses),
		"goals":      render(p.Goals),
	})
	if err != nil {
		return "", fmt.Errorf("HashProblem: %w", err)
	}
	return hashWithDomain(DomainProblem, canonical), nil
}

// MustHashPredicate is like HashPredicate but panics on error.
func MustHashPredicate(p Predicate) string {
	h, err := HashPredicate(p)
	if err != nil {
		panic(err)
	}
	return h
}
