package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `id, problem, problem_hash, started_seq, iterations, generation, status, error, engine_version`

// ListRuns returns every run ordered by its logical start sequence.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// ReadFacts returns the facts of a run in journal order.
// Returns an empty slice (not nil) if the run recorded none.
func (s *Store) ReadFacts(ctx context.Context, runID string) ([]Fact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, hash, text, origin, rule, generation
		FROM facts
		WHERE run_id = ?
		ORDER BY seq ASC, hash COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	facts := []Fact{}
	for rows.Next() {
		var (
			f    Fact
			text string
			gen  int64
		)
		if err := rows.Scan(&f.RunID, &f.Seq, &f.Hash, &text, &f.Origin, &f.Rule, &gen); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		f.Predicate, err = unmarshalPredicate(text)
		if err != nil {
			return nil, fmt.Errorf("read facts: seq %d: %w", f.Seq, err)
		}
		f.Generation = uint64(gen)
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return facts, nil
}

// ReadSnapshot returns the decompressed dump stored for a run. The boolean
// is false when the run has no snapshot.
func (s *Store) ReadSnapshot(ctx context.Context, runID string) ([]byte, bool, error) {
	var (
		codec   string
		rawSize int64
		data    []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT codec, raw_size, data FROM snapshots WHERE run_id = ?
	`, runID).Scan(&codec, &rawSize, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	raw, err := decompress(codec, data)
	if err != nil {
		return nil, false, err
	}
	if int64(len(raw)) != rawSize {
		return nil, false, fmt.Errorf("read snapshot: size %d, recorded %d", len(raw), rawSize)
	}
	return raw, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r   Run
		gen int64
	)
	err := row.Scan(&r.ID, &r.Problem, &r.ProblemHash, &r.StartedSeq, &r.Iterations, &gen, &r.Status, &r.Error, &r.EngineVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Generation = uint64(gen)
	return r, nil
}
