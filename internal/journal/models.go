package journal

import "time"

// Run statuses persisted in the runs table.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Action levels persisted in the actions table.
const (
	LevelRename = "rename"
	LevelWarn   = "warn"
	LevelInfo   = "info"
)

// Run describes one invocation of the reconciliation pipeline.
type Run struct {
	ID         string
	Root       string
	DryRun     bool
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Action describes one journaled event within a run.
type Action struct {
	ID        int64
	RunID     string
	Phase     string
	Level     string
	Result    string
	Source    string
	Dest      string
	Detail    string
	Applied   bool
	CreatedAt time.Time
}
