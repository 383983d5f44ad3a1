package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"takeoutfix/internal/config"
	"takeoutfix/internal/detect"
	"takeoutfix/internal/embed"
	"takeoutfix/internal/extfix"
	"takeoutfix/internal/fileops"
	"takeoutfix/internal/journal"
	"takeoutfix/internal/logging"
	"takeoutfix/internal/matcher"
	"takeoutfix/internal/normalizer"
	"takeoutfix/internal/services"
	"takeoutfix/internal/stage"
)

// Options controls pipeline construction.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *journal.Store
	// Detector and Embedder default to the configured external binaries when
	// nil; tests inject fakes here.
	Detector detect.Detector
	Embedder embed.Embedder

	Root             string
	DryRun           bool
	SkipExtensionFix bool
	SkipEmbed        bool
}

// Pipeline executes the reconciliation phases in order over one export tree.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *journal.Store
	mover    *fileops.Mover
	handlers []stage.Handler

	root   string
	dryRun bool
}

// New validates the target directory and assembles the phase handlers.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "construct", "Configuration unavailable", nil)
	}

	root, err := config.ExpandPath(opts.Root)
	if err != nil {
		return nil, services.Wrap(services.ErrUsage, "pipeline", "resolve target", "Invalid target directory", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrUsage, "pipeline", "resolve target", fmt.Sprintf("Target directory %s is not accessible", root), err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrUsage, "pipeline", "resolve target", fmt.Sprintf("Target %s is not a directory", root), nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	detector := opts.Detector
	if detector == nil {
		detector = detect.NewFileCommand(opts.Config.DetectorBinary())
	}
	embedder := opts.Embedder
	if embedder == nil {
		embedder = embed.NewExifTool(opts.Config.EmbedderBinary())
	}

	mover := fileops.New(logger, opts.DryRun)

	handlers := []stage.Handler{
		normalizer.New(logger, mover, opts.Store),
	}
	if opts.Config.Extensions.Enabled && !opts.SkipExtensionFix {
		handlers = append(handlers, extfix.New(logger, detector, mover, opts.Store))
	}
	handlers = append(handlers, matcher.New(logger, mover, opts.Store))
	if opts.Config.Embedder.Enabled && !opts.SkipEmbed {
		handlers = append(handlers, embed.NewPhase(logger, embedder, opts.Store, opts.Config.Embedder.ExcludeSubstring))
	}

	return &Pipeline{
		cfg:      opts.Config,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		store:    opts.Store,
		mover:    mover,
		handlers: handlers,
		root:     root,
		dryRun:   opts.DryRun,
	}, nil
}

// Run executes every phase in order and returns the aggregated run record.
// Health checks run before any mutation; an unhealthy phase aborts the whole
// run.
func (p *Pipeline) Run(ctx context.Context) (*stage.Run, error) {
	lockPath := p.lockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock", "Failed to create lock directory", err)
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock", "Failed to acquire run lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock", fmt.Sprintf("Another run is already reconciling %s", p.root), nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	run := &stage.Run{
		ID:     uuid.NewString(),
		Root:   p.root,
		DryRun: p.dryRun,
	}
	ctx = services.WithRunID(ctx, run.ID)
	logger := logging.WithContext(ctx, p.logger)

	for _, handler := range p.handlers {
		if health := handler.HealthCheck(ctx); !health.Ready {
			return nil, services.Wrap(services.ErrConfiguration, health.Name, "health check", health.Detail, nil)
		}
	}

	if p.store != nil {
		record := journal.Run{ID: run.ID, Root: run.Root, DryRun: run.DryRun, StartedAt: time.Now()}
		if err := p.store.BeginRun(ctx, record); err != nil {
			return nil, services.Wrap(services.ErrTransient, "pipeline", "begin run", "Failed to journal run start", err)
		}
	}

	logger.Info("reconciliation started",
		logging.String("root", run.Root),
		logging.Bool("dry_run", run.DryRun),
		logging.Int("phases", len(p.handlers)),
	)

	for _, handler := range p.handlers {
		phaseCtx := services.WithPhase(ctx, handler.Name())
		phaseLogger := logging.WithContext(phaseCtx, p.logger)
		phaseLogger.Info("phase started")
		if err := handler.Execute(phaseCtx, run); err != nil {
			phaseLogger.Error("phase failed", logging.Error(err))
			p.finish(ctx, run.ID, journal.RunStatusFailed)
			return run, err
		}
		phaseLogger.Info("phase completed",
			logging.Int("renamed", run.Renamed),
			logging.Int("warned", run.Warned),
		)
	}

	p.finish(ctx, run.ID, journal.RunStatusCompleted)
	logger.Info("reconciliation completed",
		logging.Int("renamed", run.Renamed),
		logging.Int("warned", run.Warned),
		logging.Int("skipped", run.Skipped),
	)
	return run, nil
}

func (p *Pipeline) finish(ctx context.Context, id, status string) {
	if p.store == nil {
		return
	}
	if err := p.store.FinishRun(ctx, id, status); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to journal run finish", logging.Error(err))
	}
}

// lockPath keys the run lock by target directory, kept out of the export tree
// so the scanner never sees it.
func (p *Pipeline) lockPath() string {
	sum := sha256.Sum256([]byte(p.root))
	name := fmt.Sprintf("takeoutfix-%s.lock", hex.EncodeToString(sum[:8]))
	dir := p.cfg.Paths.LogDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, name)
}
