// Package extfix corrects content file extensions that disagree with the
// file's actual encoded format.
package extfix

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"takeoutfix/internal/detect"
	"takeoutfix/internal/fileops"
	"takeoutfix/internal/journal"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/scan"
	"takeoutfix/internal/services"
	"takeoutfix/internal/stage"
)

const phaseName = "extension-fix"

// extensionByMIME is the fixed mapping from detected MIME type to canonical
// extension. Anything absent from this map is explicitly unknown and is never
// guessed.
var extensionByMIME = map[string]string{
	"image/jpeg":       "jpg",
	"image/png":        "png",
	"image/gif":        "gif",
	"image/webp":       "webp",
	"image/heic":       "heic",
	"image/heif":       "heif",
	"image/tiff":       "tif",
	"image/bmp":        "bmp",
	"video/mp4":        "mp4",
	"video/quicktime":  "mov",
	"video/x-msvideo":  "avi",
	"video/x-matroska": "mkv",
	"video/webm":       "webm",
	"video/mpeg":       "mpg",
	"video/3gpp":       "3gp",
}

// Lookup returns the canonical extension for a detected MIME type.
func Lookup(mime string) (string, bool) {
	ext, ok := extensionByMIME[strings.ToLower(strings.TrimSpace(mime))]
	return ext, ok
}

// Corrector renames content files whose extension does not match their
// detected format.
type Corrector struct {
	detector detect.Detector
	mover    *fileops.Mover
	store    *journal.Store
	logger   *slog.Logger
}

// New constructs the extension correction phase.
func New(logger *slog.Logger, detector detect.Detector, mover *fileops.Mover, store *journal.Store) *Corrector {
	return &Corrector{
		detector: detector,
		mover:    mover,
		store:    store,
		logger:   logging.NewComponentLogger(logger, phaseName),
	}
}

func (c *Corrector) Name() string { return phaseName }

// HealthCheck verifies the detector is wired; without it the phase cannot run
// at all and the whole run aborts before any mutation.
func (c *Corrector) HealthCheck(ctx context.Context) stage.Health {
	if c.detector == nil {
		return stage.Unhealthy(phaseName, "format detector unavailable")
	}
	if c.mover == nil {
		return stage.Unhealthy(phaseName, "rename executor unavailable")
	}
	return stage.Healthy(phaseName)
}

// Execute inspects every content file under the run root and corrects
// mismatched extensions. Sidecars are never touched. JPEGs keep their
// extension without a detector round trip.
func (c *Corrector) Execute(ctx context.Context, run *stage.Run) error {
	logger := logging.WithContext(ctx, c.logger)

	files, err := scan.ContentFiles(run.Root)
	if err != nil {
		return services.Wrap(services.ErrTransient, phaseName, "scan tree", "Failed to list content files", err)
	}

	for _, file := range files {
		current := strings.TrimPrefix(filepath.Ext(file.Name), ".")
		if strings.EqualFold(current, "jpg") || strings.EqualFold(current, "jpeg") {
			continue
		}

		mime, err := c.detector.Detect(ctx, file.Path)
		if err != nil {
			logger.Warn("format detection failed",
				logging.String("source", file.Path),
				logging.Error(err),
			)
			c.record(ctx, run, journal.LevelWarn, "detect_failed", file.Path, "", err.Error())
			run.Warned++
			continue
		}

		mapped, known := Lookup(mime)
		if !known {
			logger.Warn("unmapped format, extension left alone",
				logging.String("source", file.Path),
				logging.String("mime", mime),
			)
			c.record(ctx, run, journal.LevelWarn, "unknown_format", file.Path, "", mime)
			run.Warned++
			continue
		}
		if strings.EqualFold(current, mapped) {
			continue
		}

		base := strings.TrimSuffix(file.Path, filepath.Ext(file.Path))
		dst := base + "." + mapped
		if fileops.Exists(dst) {
			logger.Warn("corrected path already exists, skipping",
				logging.String("source", file.Path),
				logging.String("dest", dst),
				logging.String("mime", mime),
			)
			c.record(ctx, run, journal.LevelWarn, "destination_exists", file.Path, dst, mime)
			run.Warned++
			continue
		}

		if _, err := c.mover.Rename(ctx, file.Path, dst); err != nil {
			logger.Warn("extension rename failed",
				logging.String("source", file.Path),
				logging.String("dest", dst),
				logging.Error(err),
			)
			c.record(ctx, run, journal.LevelWarn, "rename_failed", file.Path, dst, err.Error())
			run.Warned++
			continue
		}
		logger.Info("extension corrected",
			logging.String("source", file.Name),
			logging.String("dest", filepath.Base(dst)),
			logging.String("mime", mime),
		)
		c.record(ctx, run, journal.LevelRename, "corrected", file.Path, dst, mime)
		run.Renamed++
	}
	return nil
}

func (c *Corrector) record(ctx context.Context, run *stage.Run, level, result, source, dest, detail string) {
	if c.store == nil {
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
	if err := c.store.RecordAction(ctx, action); err != nil {
		logging.WithContext(ctx, c.logger).Warn("failed to journal action", logging.Error(err))
	}
}
