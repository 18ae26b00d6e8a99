// Package ir provides the canonical value types shared by every layer of the
// reasoner: points and group ids, the predicate kinds, point-level predicates,
// the sealed Fact union and the rule input Form.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Point, LineID and CongID are opaque integer ids; textual names are a
//     rendering concern owned by the database symbol table
//   - Predicate arity is validated at construction, never inside a rule
//   - Fact is a closed union; unknown kinds cannot reach the database
//   - Point names are NFC normalized at the boundary
package ir
