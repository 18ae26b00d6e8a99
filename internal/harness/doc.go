// Package harness runs reasoner scenarios from YAML files.
//
// A scenario names a problem, inline or by file, saturates it with the
// forward-chaining driver, and checks assertions against the resulting
// database. Scenarios may also compare the run's increased facts against a
// golden file.
//
// # Scenario Format
//
//	name: midsegment
//	description: "The midline of a triangle is parallel to its base"
//	problem: ../problems/triangles.cue   # optional, relative to the scenario
//	hypotheses:                          # used when problem is empty
//	  - midp(E,A,B)
//	  - midp(F,A,C)
//	steps:                               # optional further incremental runs
//	  - ["coll(A,B,C)"]
//	max_iterations: 5000
//	golden: true
//	assertions:
//	  - type: proves
//	    predicate: para(E,F,B,C)
//	  - type: not_proves
//	    predicate: coll(E,F,B)
//	  - type: count
//	    kind: midp
//	    at_least: 2
//	  - type: stable
//	  - type: fails
//	    code: ITERATION_LIMIT
//
// # Assertion Types
//
//   - proves: the predicate holds after saturation
//   - not_proves: the predicate does not hold
//   - count: at least N increased facts of a kind
//   - goals: every goal of the loaded problem holds
//   - stable: saturating again on a fresh database yields the same facts
//   - fails: the run stopped with the given runtime error code
//
// # Deterministic Testing
//
// Every scenario runs on a fresh database with a fixed run id, so the
// increased facts are identical across runs and machines.
package harness
