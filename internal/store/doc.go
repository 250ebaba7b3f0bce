// Package store provides SQLite-backed durable storage for check runs.
//
// The run log has two tables:
//   - runs: one row per check execution, with plan and result fingerprints
//   - mismatches: the reported mismatches of each run, in report order
//
// # Ordering
//
// Every run carries a logical seq assigned at write time. Listings order by
// seq DESC, id ASC COLLATE BINARY and never by created_at, so two runs
// recorded within the same wall-clock second still list deterministically.
//
// # Idempotency
//
// WriteRun is keyed on the run ID. Writing the same run twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
