package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// ErrRunNotFound is returned when a run id has no journal row.
var ErrRunNotFound = errors.New("run not found")

// BeginRun inserts a run row in the running state and assigns its logical
// start sequence. Uses ON CONFLICT(id) DO NOTHING: beginning the same run
// twice keeps the first row, and the stored row is returned either way.
func (s *Store) BeginRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		return Run{}, fmt.Errorf("begin run: empty id")
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(started_seq), 0) + 1 FROM runs`).Scan(&next); err != nil {
		return Run{}, fmt.Errorf("begin run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, problem, problem_hash, started_seq, status, engine_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Problem, run.ProblemHash, next, StatusRunning, run.EngineVersion)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}
	return s.ReadRun(ctx, run.ID)
}

// FinishRun records the outcome of a run. A nil outcome error marks the
// run saturated; anything else marks it failed and keeps the message.
func (s *Store) FinishRun(ctx context.Context, runID string, out Outcome) error {
	status, msg := StatusSaturated, ""
	if out.Err != nil {
		status, msg = StatusFailed, out.Err.Error()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET iterations = ?, generation = ?, status = ?, error = ?
		WHERE id = ?
	`, out.Iterations, int64(out.Generation), status, msg, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// WriteFacts appends facts to a run in slice order. Seq, hash and origin
// are filled in here; a fact whose hash the run already holds is ignored
// (ON CONFLICT DO NOTHING). Returns the number of rows inserted.
func (s *Store) WriteFacts(ctx context.Context, runID string, facts []Fact) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write facts: %w", err)
	}
	defer tx.Rollback()

	var base int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM facts WHERE run_id = ?`, runID).Scan(&base); err != nil {
		return 0, fmt.Errorf("write facts: next seq: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO facts (run_id, seq, hash, kind, text, origin, rule, generation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, hash) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("write facts: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, f := range facts {
		hash, text, err := marshalPredicate(f.Predicate)
		if err != nil {
			return 0, fmt.Errorf("write facts: %w", err)
		}
		origin := OriginDerived
		if f.Rule == "" {
			origin = OriginHypothesis
		}
		res, err := stmt.ExecContext(ctx,
			runID,
			base+int64(inserted)+1,
			hash,
			f.Predicate.Kind.String(),
			text,
			origin,
			f.Rule,
			int64(f.Generation),
		)
		if err != nil {
			return 0, fmt.Errorf("write facts: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write facts: commit: %w", err)
	}
	return inserted, nil
}

// WriteSnapshot stores a compressed database dump for a run, replacing any
// earlier snapshot of the same run.
func (s *Store) WriteSnapshot(ctx context.Context, runID string, raw []byte) error {
	data, err := compress(raw)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, codec, raw_size, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET codec = excluded.codec, raw_size = excluded.raw_size, data = excluded.data
	`, runID, CodecZstd, len(raw), data)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
