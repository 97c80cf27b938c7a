// Package store provides SQLite-backed history of check runs.
//
// Each run records what was checked, which checks ran, its outcome and every
// report it produced:
//   - runs: one row per Runner.Check invocation
//   - reports: the diagnostics of a run, in rendering order
//
// Runs are ordered by seq, a logical counter assigned at write time, never by
// wall-clock timestamps. Run IDs are UUIDv7 unless the caller supplies its
// own generator.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
