package embed

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"takeoutfix/internal/fileops"
	"takeoutfix/internal/journal"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/scan"
	"takeoutfix/internal/services"
	"takeoutfix/internal/sidecar"
	"takeoutfix/internal/stage"
)

const phaseName = "embed"

// Phase runs the embedder over every content file that has a canonical
// sidecar after matching.
type Phase struct {
	embedder Embedder
	store    *journal.Store
	logger   *slog.Logger
	// exclude skips content files whose name contains this substring,
	// typically exports already edited by the photo service.
	exclude string
}

// NewPhase constructs the embedding phase.
func NewPhase(logger *slog.Logger, embedder Embedder, store *journal.Store, exclude string) *Phase {
	return &Phase{
		embedder: embedder,
		store:    store,
		logger:   logging.NewComponentLogger(logger, phaseName),
		exclude:  strings.TrimSpace(exclude),
	}
}

func (p *Phase) Name() string { return phaseName }

// HealthCheck verifies the embedder is wired.
func (p *Phase) HealthCheck(ctx context.Context) stage.Health {
	if p.embedder == nil {
		return stage.Unhealthy(phaseName, "metadata embedder unavailable")
	}
	return stage.Healthy(phaseName)
}

// Execute embeds sidecar metadata into every eligible content file. Content
// files without a canonical sidecar are skipped silently; the matcher already
// journaled their outcome.
func (p *Phase) Execute(ctx context.Context, run *stage.Run) error {
	logger := logging.WithContext(ctx, p.logger)

	files, err := scan.ContentFiles(run.Root)
	if err != nil {
		return services.Wrap(services.ErrTransient, phaseName, "scan tree", "Failed to list content files", err)
	}

	for _, file := range files {
		if p.exclude != "" && strings.Contains(file.Name, p.exclude) {
			logger.Debug("excluded from embedding", logging.String("source", file.Path))
			run.Skipped++
			continue
		}
		sidecarPath := filepath.Join(file.Dir, sidecar.CanonicalName(file.Name))
		if !fileops.Exists(sidecarPath) {
			continue
		}

		if run.DryRun {
			logger.Info("would embed metadata",
				logging.String("content", file.Path),
				logging.String("sidecar", sidecarPath),
			)
			p.record(ctx, run, journal.LevelInfo, "would_embed", file.Path, sidecarPath, "")
			continue
		}

		if err := p.embedder.Embed(ctx, file.Path, sidecarPath); err != nil {
			logger.Warn("metadata embed failed",
				logging.String("content", file.Path),
				logging.Error(err),
			)
			p.record(ctx, run, journal.LevelWarn, "embed_failed", file.Path, sidecarPath, err.Error())
			run.Warned++
			continue
		}
		logger.Info("metadata embedded", logging.String("content", file.Name))
		p.record(ctx, run, journal.LevelInfo, "embedded", file.Path, sidecarPath, "")
	}
	return nil
}

func (p *Phase) record(ctx context.Context, run *stage.Run, level, result, source, dest, detail string) {
	if p.store == nil {
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
		Applied: result == "embedded",
	}
	if err := p.store.RecordAction(ctx, action); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to journal action", logging.Error(err))
	}
}
