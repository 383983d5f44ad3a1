// Package normalizer repairs sidecar filenames with known malformed patterns.
package normalizer

import (
	"context"
	"log/slog"
	"path/filepath"

	"takeoutfix/internal/fileops"
	"takeoutfix/internal/journal"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/scan"
	"takeoutfix/internal/services"
	"takeoutfix/internal/sidecar"
	"takeoutfix/internal/stage"
)

const phaseName = "normalize"

// Normalizer renames sidecars whose names carry an abbreviated metadata
// marker or a misplaced disambiguation counter.
type Normalizer struct {
	mover  *fileops.Mover
	store  *journal.Store
	logger *slog.Logger
}

// New constructs the normalizer phase.
func New(logger *slog.Logger, mover *fileops.Mover, store *journal.Store) *Normalizer {
	return &Normalizer{
		mover:  mover,
		store:  store,
		logger: logging.NewComponentLogger(logger, phaseName),
	}
}

func (n *Normalizer) Name() string { return phaseName }

// HealthCheck verifies the phase's collaborators are wired.
func (n *Normalizer) HealthCheck(ctx context.Context) stage.Health {
	if n.mover == nil {
		return stage.Unhealthy(phaseName, "rename executor unavailable")
	}
	return stage.Healthy(phaseName)
}

// Execute repairs every malformed sidecar name under the run root. Per-file
// problems are warned about and skipped; only a failed tree scan aborts.
func (n *Normalizer) Execute(ctx context.Context, run *stage.Run) error {
	logger := logging.WithContext(ctx, n.logger)

	sidecars, err := scan.Sidecars(run.Root)
	if err != nil {
		return services.Wrap(services.ErrTransient, phaseName, "scan tree", "Failed to list sidecar files", err)
	}
	logger.Debug("scanned sidecars", logging.Int("count", len(sidecars)))

	for _, sc := range sidecars {
		repaired, ok := sidecar.RepairAbbreviation(sc.Name)
		if !ok {
			repaired, ok = sidecar.RepairMisplacedCounter(sc.Name)
		}
		if !ok {
			if sidecar.HasCounterSuffix(sc.Name) && !sidecar.IsCanonical(sc.Name) {
				// Counter present but no recognizable marker; not ours to fix.
				logger.Info("unhandled sidecar name", logging.String("source", sc.Path))
				n.record(ctx, run, journal.LevelInfo, "unhandled", sc.Path, "", "no known metadata marker before counter")
			}
			continue
		}

		dst := filepath.Join(sc.Dir, repaired)
		if fileops.Exists(dst) {
			logger.Warn("normalization target already exists",
				logging.String("source", sc.Path),
				logging.String("dest", dst),
			)
			n.record(ctx, run, journal.LevelWarn, "destination_exists", sc.Path, dst, "sidecar left untouched")
			run.Warned++
			continue
		}

		if _, err := n.mover.Rename(ctx, sc.Path, dst); err != nil {
			logger.Warn("sidecar rename failed",
				logging.String("source", sc.Path),
				logging.String("dest", dst),
				logging.Error(err),
			)
			n.record(ctx, run, journal.LevelWarn, "rename_failed", sc.Path, dst, err.Error())
			run.Warned++
			continue
		}
		logger.Info("sidecar name normalized",
			logging.String("source", sc.Name),
			logging.String("dest", repaired),
		)
		n.record(ctx, run, journal.LevelRename, "normalized", sc.Path, dst, "")
		run.Renamed++
	}
	return nil
}

func (n *Normalizer) record(ctx context.Context, run *stage.Run, level, result, source, dest, detail string) {
	if n.store == nil {
		return
	}
	action := journal.Action{
		RunID:   run.ID,
		Phase:   phaseName,
		Level:   level,
		Result:  result,
		Source:  source,
		Dest:    dest,
		Detail:  detail,
		Applied: level == journal.LevelRename && !run.DryRun,
	}
	if err := n.store.RecordAction(ctx, action); err != nil {
		logging.WithContext(ctx, n.logger).Warn("failed to journal action", logging.Error(err))
	}
}
