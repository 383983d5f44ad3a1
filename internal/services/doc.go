// Package services defines the shared error taxonomy and context annotations
// used across reconciliation phases.
//
// Errors are tagged with sentinel markers so callers can distinguish fatal
// conditions (bad invocation, missing external tools) from per-file issues
// that must never abort a batch run. Context helpers carry the active run and
// phase identifiers into structured logs.
package services
