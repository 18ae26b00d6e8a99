// Package store journals reasoner runs to SQLite.
//
// The journal is append-only and lives outside the reasoning core: the
// engine never reads it back. Each run records:
//   - runs: the problem, a logical start sequence, iteration and generation
//     counts, and a terminal status
//   - facts: every fact the run accepted, phrased at point level, keyed by
//     its content hash
//   - snapshots: an optional zstd-compressed database dump
//
// Ordering uses the logical started_seq and per-run seq columns, never
// timestamps, so listings are identical across machines. Queries order by
// (seq, hash COLLATE BINARY).
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// Fact hashes come from ir.HashPredicate.
package store
