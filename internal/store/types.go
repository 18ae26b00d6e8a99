package store

import "github.com/JiajunSong-Bigai/inference-engine/internal/ir"

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSaturated = "saturated"
	StatusFailed    = "failed"
)

// Fact origins.
const (
	OriginHypothesis = "hypothesis"
	OriginDerived    = "derived"
)

// Run is one saturation run of a problem.
type Run struct {
	ID            string `json:"id"`
	Problem       string `json:"problem"`
	ProblemHash   string `json:"problem_hash,omitempty"`
	StartedSeq    int64  `json:"started_seq"`
	Iterations    int    `json:"iterations"`
	Generation    uint64 `json:"generation"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	EngineVersion string `json:"engine_version"`
}

// Fact is one journaled fact of a run. Rule is empty for hypotheses.
type Fact struct {
	RunID      string       `json:"run_id"`
	Seq        int64        `json:"seq"`
	Hash       string       `json:"hash"`
	Predicate  ir.Predicate `json:"predicate"`
	Origin     string       `json:"origin"`
	Rule       string       `json:"rule,omitempty"`
	Generation uint64       `json:"generation"`
}

// Outcome is what a finished run reports back to its journal row.
type Outcome struct {
	Iterations int
	Generation uint64
	Err        error
}
