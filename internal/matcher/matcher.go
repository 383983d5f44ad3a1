// Package matcher associates every content file with its metadata sidecar,
// recovering sidecars whose names drifted from the canonical form.
package matcher

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

const phaseName = "match"

// Result classifies the outcome of sidecar matching for one content file.
// Exactly one result is produced per content file per run.
type Result int

const (
	AlreadyCorrect Result = iota
	UniqueCandidateFound
	MultipleCandidatesFound
	LegacyTruncatedMatch
	AbbreviatedSuffixMatch
	NoMatchFound
)

func (r Result) String() string {
	switch r {
	case AlreadyCorrect:
		return "already_correct"
	case UniqueCandidateFound:
		return "unique_candidate"
	case MultipleCandidatesFound:
		return "multiple_candidates"
	case LegacyTruncatedMatch:
		return "legacy_truncated"
	case AbbreviatedSuffixMatch:
		return "abbreviated_suffix"
	case NoMatchFound:
		return "no_match"
	default:
		return "unknown"
	}
}

// Matcher locates, recovers, and canonically renames sidecars for content files.
type Matcher struct {
	mover  *fileops.Mover
	store  *journal.Store
	logger *slog.Logger
}

// New constructs the matcher phase.
func New(logger *slog.Logger, mover *fileops.Mover, store *journal.Store) *Matcher {
	return &Matcher{
		mover:  mover,
		store:  store,
		logger: logging.NewComponentLogger(logger, phaseName),
	}
}

func (m *Matcher) Name() string { return phaseName }

// HealthCheck verifies the phase's collaborators are wired.
func (m *Matcher) HealthCheck(ctx context.Context) stage.Health {
	if m.mover == nil {
		return stage.Unhealthy(phaseName, "rename executor unavailable")
	}
	return stage.Healthy(phaseName)
}

// Execute matches every content file under the run root against the sidecars
// in its own directory. Search is strictly directory-local; each export
// subdirectory is self-contained.
func (m *Matcher) Execute(ctx context.Context, run *stage.Run) error {
	logger := logging.WithContext(ctx, m.logger)

	files, err := scan.ContentFiles(run.Root)
	if err != nil {
		return services.Wrap(services.ErrTransient, phaseName, "scan tree", "Failed to list content files", err)
	}

	for _, file := range files {
		result := m.matchOne(ctx, run, file)
		logger.Debug("content file matched",
			logging.String("source", file.Path),
			logging.String("result", result.String()),
		)
	}
	return nil
}

// matchOne walks the fallback chain for a single content file. The directory
// is re-listed per file so matches observe sidecar renames committed for
// earlier files in the same directory.
func (m *Matcher) matchOne(ctx context.Context, run *stage.Run, file scan.Entry) Result {
	logger := logging.WithContext(ctx, m.logger)

	entries, err := scan.Dir(file.Dir)
	if err != nil {
		logger.Warn("directory listing failed",
			logging.String("source", file.Path),
			logging.Error(err),
		)
		m.record(ctx, run, journal.LevelWarn, "list_failed", file.Path, "", err.Error())
		run.Warned++
		return NoMatchFound
	}

	canonicalName := sidecar.CanonicalName(file.Name)
	canonicalPath := filepath.Join(file.Dir, canonicalName)

	// 1. Canonical sidecar already present.
	for _, e := range entries {
		if e.IsSidecar() && sidecar.EqualNames(e.Name, canonicalName) {
			m.record(ctx, run, journal.LevelInfo, AlreadyCorrect.String(), file.Path, e.Path, "")
			return AlreadyCorrect
		}
	}

	// 2. Wildcard pattern over the middle segment.
	base := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	var candidates []scan.Entry
	for _, e := range entries {
		if e.IsSidecar() && sidecar.MatchesPattern(e.Name, base) {
			candidates = append(candidates, e)
		}
	}
	switch {
	case len(candidates) == 1:
		return m.adopt(ctx, run, file, candidates[0], canonicalPath, UniqueCandidateFound)
	case len(candidates) > 1:
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		// Ambiguity is a terminal state: leave every candidate alone and ask
		// a human.
		logger.Warn("multiple sidecar candidates, none renamed",
			logging.String("source", file.Path),
			logging.String("candidates", strings.Join(names, ", ")),
		)
		m.record(ctx, run, journal.LevelWarn, MultipleCandidatesFound.String(), file.Path, "", strings.Join(names, ", "))
		run.Warned++
		return MultipleCandidatesFound
	}

	// 3. Legacy truncation: long filenames lost their trailing character.
	if runes := []rune(base); len(runes) > 1 {
		truncated := string(runes[:len(runes)-1]) + ".json"
		if e, ok := findEntry(entries, truncated); ok {
			return m.adopt(ctx, run, file, e, canonicalPath, LegacyTruncatedMatch)
		}
	}

	// 4. Abbreviated marker suffixes, in priority order.
	for _, suffix := range sidecar.AbbreviatedSuffixes() {
		if e, ok := findEntry(entries, file.Name+suffix); ok {
			return m.adopt(ctx, run, file, e, canonicalPath, AbbreviatedSuffixMatch)
		}
	}

	// 5. Some content files legitimately have no sidecar.
	logger.Info("no sidecar found", logging.String("source", file.Path))
	m.record(ctx, run, journal.LevelInfo, NoMatchFound.String(), file.Path, "", "")
	return NoMatchFound
}

// adopt renames a recovered sidecar to the canonical path. Step 1 of the
// chain guarantees the canonical path is free at this point.
func (m *Matcher) adopt(ctx context.Context, run *stage.Run, file, candidate scan.Entry, canonicalPath string, result Result) Result {
	logger := logging.WithContext(ctx, m.logger)

	if _, err := m.mover.Rename(ctx, candidate.Path, canonicalPath); err != nil {
		logger.Warn("sidecar rename failed",
			logging.String("source", candidate.Path),
			logging.String("dest", canonicalPath),
			logging.Error(err),
		)
		m.record(ctx, run, journal.LevelWarn, "rename_failed", candidate.Path, canonicalPath, err.Error())
		run.Warned++
		return result
	}
	logger.Info("sidecar recovered",
		logging.String("content", file.Name),
		logging.String("source", candidate.Name),
		logging.String("dest", filepath.Base(canonicalPath)),
		logging.String("result", result.String()),
	)
	m.record(ctx, run, journal.LevelRename, result.String(), candidate.Path, canonicalPath, "")
	run.Renamed++
	return result
}

func findEntry(entries []scan.Entry, name string) (scan.Entry, bool) {
	for _, e := range entries {
		if sidecar.EqualNames(e.Name, name) {
			return e, true
		}
	}
	return scan.Entry{}, false
}

func (m *Matcher) record(ctx context.Context, run *stage.Run, level, result, source, dest, detail string) {
	if m.store == nil {
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
	if err := m.store.RecordAction(ctx, action); err != nil {
		logging.WithContext(ctx, m.logger).Warn("failed to journal action", logging.Error(err))
	}
}
