// Package store provides SQLite-backed persistence for raffleverify.
//
// Two tables live in one database file:
//   - responses: HTTP bodies cached by URL, each with a SHA-256 digest that
//     is re-checked on read so a corrupted row is never served
//   - verifications: one row per verification run, holding the canonical
//     JSON report and its digest
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// Timestamps are stored as unix milliseconds in UTC.
package store
