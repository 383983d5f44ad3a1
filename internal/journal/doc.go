// Package journal persists reconciliation runs and their per-file outcomes.
//
// Every rename, warning, and match result is recorded in a SQLite database so
// batch runs over large export trees stay auditable after the fact. The
// journal is append-only from the reconciler's point of view; the report
// command reads it back.
package journal
