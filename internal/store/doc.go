// Package store keeps surge run history in SQLite.
//
// Each run is one row in runs, keyed by the runner's run ID, with one row
// per assertion verdict in verdicts. Writes are idempotent: saving the same
// run twice keeps the first copy.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: verdicts are deleted with their run
//
// Listings are ordered by started_at DESC, id ASC COLLATE BINARY so that two
// runs started in the same instant still list the same way every time.
package store
