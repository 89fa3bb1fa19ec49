// Package store provides SQLite-backed durable storage for the evaluation
// journal.
//
// The journal is append-only. Each row records one table evaluation: the
// canonical subject, the winning rule or the error code, and the versions
// that produced it.
//
// # Critical Patterns
//
// Idempotency:
//   - Evaluation ids are content-addressed (see ir.EvaluationID)
//   - Writes use ON CONFLICT(id) DO NOTHING, so re-recording is a no-op
//
// Logical time:
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Queries order by seq ASC, id COLLATE BINARY ASC for stable results
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Subjects and results are stored as RFC 8785 canonical JSON produced by
// internal/ir.
package store
