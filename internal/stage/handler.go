// Package stage defines the contract shared by the reconciliation phases.
package stage

import "context"

// Run carries the state shared by every phase of one reconciliation pass. The
// directory tree itself is the store of record; Run only holds identity and
// aggregate counters.
type Run struct {
	ID     string
	Root   string
	DryRun bool

	// Counters aggregated across phases.
	Renamed int
	Warned  int
	Skipped int
}

// Handler describes the contract the pipeline needs from each phase.
type Handler interface {
	// Name identifies the phase in logs and the journal.
	Name() string
	// Execute performs the phase over the current on-disk tree. Per-file
	// problems are handled internally; a returned error aborts the run.
	Execute(context.Context, *Run) error
	// HealthCheck verifies the phase's prerequisites before any mutation.
	HealthCheck(context.Context) Health
}
