package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"takeoutfix/internal/config"
)

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    root TEXT NOT NULL,
    dry_run INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'running',
    started_at TEXT NOT NULL,
    finished_at TEXT
);
CREATE TABLE IF NOT EXISTS actions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    phase TEXT NOT NULL,
    level TEXT NOT NULL,
    result TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    dest TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    applied INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actions_run ON actions(run_id);
`

// Open initializes or connects to the journal database under the configured
// log directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "journal.db"))
}

// OpenPath initializes or connects to a journal database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records a new run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	return s.execWithRetry(ctx,
		`INSERT INTO runs (id, root, dry_run, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Root, boolToInt(run.DryRun), RunStatusRunning, run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
}

// FinishRun stamps a run with its terminal status and finish time.
func (s *Store) FinishRun(ctx context.Context, id, status string) error {
	return s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
}

// RecordAction appends one event to a run's journal.
func (s *Store) RecordAction(ctx context.Context, action Action) error {
	created := action.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return s.execWithRetry(ctx,
		`INSERT INTO actions (run_id, phase, level, result, source, dest, detail, applied, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		action.RunID, action.Phase, action.Level, action.Result,
		action.Source, action.Dest, action.Detail, boolToInt(action.Applied),
		created.UTC().Format(time.RFC3339Nano),
	)
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, dry_run, status, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			dryRun   int
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Root, &dryRun, &run.Status, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.DryRun = dryRun != 0
		if run.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if finished.Valid {
			ts, err := parseTime(finished.String)
			if err != nil {
				return nil, err
			}
			run.FinishedAt = &ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListActions returns a run's journaled events in insertion order.
func (s *Store) ListActions(ctx context.Context, runID string) ([]Action, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, phase, level, result, source, dest, detail, applied, created_at
		 FROM actions WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var (
			action  Action
			applied int
			created string
		)
		if err := rows.Scan(&action.ID, &action.RunID, &action.Phase, &action.Level,
			&action.Result, &action.Source, &action.Dest, &action.Detail, &applied, &created); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		action.Applied = applied != 0
		if action.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func parseTime(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse journal timestamp %q: %w", value, err)
	}
	return ts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
