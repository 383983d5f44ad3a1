// Package fileops implements the rename executor shared by every
// reconciliation phase.
package fileops

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"takeoutfix/internal/logging"
)

// Move records a single executed or planned rename.
type Move struct {
	Source string
	Dest   string
	// Applied is false in dry-run mode: the move was reported, not performed.
	Applied bool
}

// Mover performs atomic-intent renames with an optional dry-run mode that
// substitutes a report for the filesystem mutation. Observers see every move
// in both modes, which is how dry-run output stays in lockstep with what a
// real run would do.
type Mover struct {
	dryRun    bool
	logger    *slog.Logger
	observers []func(Move)
}

// New constructs a Mover. A nil logger is replaced with a no-op logger.
func New(logger *slog.Logger, dryRun bool) *Mover {
	return &Mover{
		dryRun: dryRun,
		logger: logging.NewComponentLogger(logger, "rename"),
	}
}

// DryRun reports whether the mover is in report-only mode.
func (m *Mover) DryRun() bool {
	return m.dryRun
}

// Observe registers a callback invoked for every non-trivial move.
func (m *Mover) Observe(fn func(Move)) {
	if fn != nil {
		m.observers = append(m.observers, fn)
	}
}

// Rename moves src to dst. Identical source and destination is a no-op. The
// returned bool reports whether a move happened (or, in dry-run mode, would
// have happened).
func (m *Mover) Rename(ctx context.Context, src, dst string) (bool, error) {
	if src == dst {
		return false, nil
	}
	logger := logging.WithContext(ctx, m.logger)

	if m.dryRun {
		logger.Info("would rename",
			logging.String("source", src),
			logging.String("dest", dst),
		)
		m.notify(Move{Source: src, Dest: dst})
		return true, nil
	}

	if err := rename(src, dst); err != nil {
		return false, err
	}
	logger.Debug("renamed",
		logging.String("source", src),
		logging.String("dest", dst),
	)
	m.notify(Move{Source: src, Dest: dst, Applied: true})
	return true, nil
}

func (m *Mover) notify(move Move) {
	for _, fn := range m.observers {
		fn(move)
	}
}

// rename wraps os.Rename with a copy-and-remove fallback for cross-device
// moves, which appear when an export spans mount points.
func rename(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := copyFile(src, dst); copyErr != nil {
			return copyErr
		}
		return os.Remove(src)
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Exists reports whether a path exists. Stat errors other than not-exist are
// treated as existing so callers stay on the conservative side of the
// never-overwrite rule.
func Exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return !errors.Is(err, os.ErrNotExist)
	}
	return true
}
