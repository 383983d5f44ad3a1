package matcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"takeoutfix/internal/fileops"
	"takeoutfix/internal/stage"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runPhase(t *testing.T, root string) *stage.Run {
	t.Helper()
	m := New(nil, fileops.New(nil, false), nil)
	run := &stage.Run{ID: "test", Root: root}
	if err := m.Execute(context.Background(), run); err != nil {
		t.Fatalf("execute: %v", err)
	}
	return run
}

func TestAlreadyCorrectIsUntouched(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "photo.jpg"))
	writeFile(t, filepath.Join(root, "photo.jpg.supplemental-metadata.json"))

	run := runPhase(t, root)

	if run.Renamed != 0 || run.Warned != 0 {
		t.Fatalf("canonical layout must be a no-op, got %+v", run)
	}
}

func TestUniquePatternCandidateIsAdopted(t *testing.T) {
	root := t.TempDir()
	// Extension was corrected from mp4 to mov, sidecar still carries mp4.
	writeFile(t, filepath.Join(root, "clip.mov"))
	writeFile(t, filepath.Join(root, "clip.mp4.supplemental-metadata.json"))

	run := runPhase(t, root)

	if !exists(filepath.Join(root, "clip.mov.supplemental-metadata.json")) {
		t.Fatal("unique candidate should be renamed to the canonical name")
	}
	if exists(filepath.Join(root, "clip.mp4.supplemental-metadata.json")) {
		t.Fatal("old candidate name should be gone")
	}
	if run.Renamed != 1 {
		t.Fatalf("expected 1 rename, got %+v", run)
	}
}

func TestMultipleCandidatesAreLeftAlone(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "clip.mov"))
	a := filepath.Join(root, "clip.mp4.supplemental-metadata.json")
	b := filepath.Join(root, "clip.avi.supplemental-metadata.json")
	writeFile(t, a)
	writeFile(t, b)

	run := runPhase(t, root)

	if !exists(a) || !exists(b) {
		t.Fatal("ambiguous candidates must not be renamed")
	}
	if exists(filepath.Join(root, "clip.mov.supplemental-metadata.json")) {
		t.Fatal("no canonical sidecar should appear for an ambiguous match")
	}
	if run.Warned != 1 || run.Renamed != 0 {
		t.Fatalf("expected exactly one ambiguity warning, got %+v", run)
	}
}

func TestLegacyTruncatedMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "longfilenamethatwastru.jpg"))
	writeFile(t, filepath.Join(root, "longfilenamethatwastr.json"))

	run := runPhase(t, root)

	want := filepath.Join(root, "longfilenamethatwastru.jpg.supplemental-metadata.json")
	if !exists(want) {
		t.Fatal("legacy truncated sidecar should be renamed to canonical")
	}
	if run.Renamed != 1 {
		t.Fatalf("expected 1 rename, got %+v", run)
	}
}

func TestAbbreviatedSuffixMatchPriority(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "trip.jpg"))
	// Both variants present: the -meta spelling wins by priority and the
	// other remains for a later pass (or a human).
	writeFile(t, filepath.Join(root, "trip.jpg.supplemental-meta.json"))
	writeFile(t, filepath.Join(root, "trip.jpg.supplem.json"))

	runPhase(t, root)

	if !exists(filepath.Join(root, "trip.jpg.supplemental-metadata.json")) {
		t.Fatal("abbreviated sidecar should be renamed to canonical")
	}
	if exists(filepath.Join(root, "trip.jpg.supplemental-meta.json")) {
		t.Fatal("the higher-priority variant should have been consumed")
	}
	if !exists(filepath.Join(root, "trip.jpg.supplem.json")) {
		t.Fatal("the lower-priority variant must be left in place")
	}
}

func TestNoMatchIsInformationalOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "orphan.jpg"))

	run := runPhase(t, root)

	if run.Warned != 0 || run.Renamed != 0 {
		t.Fatalf("missing sidecar is not a warning, got %+v", run)
	}
}

func TestMatchingIsDirectoryLocal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "photo.jpg"))
	writeFile(t, filepath.Join(root, "b", "photo.jpg.supplemental-metadata.json"))

	run := runPhase(t, root)

	if run.Renamed != 0 {
		t.Fatal("sidecars in other directories must not be considered")
	}
	if !exists(filepath.Join(root, "b", "photo.jpg.supplemental-metadata.json")) {
		t.Fatal("foreign sidecar must remain in its own directory")
	}
}

func TestCaseInsensitiveCanonicalDetection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "photo.jpg"))
	writeFile(t, filepath.Join(root, "PHOTO.JPG.SUPPLEMENTAL-METADATA.JSON"))

	run := runPhase(t, root)

	if run.Renamed != 0 {
		t.Fatalf("differently-cased canonical sidecar should count as present, got %+v", run)
	}
}

func TestIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "clip.mov"))
	writeFile(t, filepath.Join(root, "clip.mp4.supplemental-metadata.json"))
	writeFile(t, filepath.Join(root, "trip.jpg"))
	writeFile(t, filepath.Join(root, "trip.jpg.supplemental-meta.json"))

	first := runPhase(t, root)
	if first.Renamed != 2 {
		t.Fatalf("expected 2 renames on first pass, got %+v", first)
	}

	second := runPhase(t, root)
	if second.Renamed != 0 || second.Warned != 0 {
		t.Fatalf("second pass must be a fixed point, got %+v", second)
	}
}

func TestResultString(t *testing.T) {
	cases := map[Result]string{
		AlreadyCorrect:          "already_correct",
		UniqueCandidateFound:    "unique_candidate",
		MultipleCandidatesFound: "multiple_candidates",
		LegacyTruncatedMatch:    "legacy_truncated",
		AbbreviatedSuffixMatch:  "abbreviated_suffix",
		NoMatchFound:            "no_match",
	}
	for result, want := range cases {
		if result.String() != want {
			t.Errorf("%d.String() = %q, want %q", result, result.String(), want)
		}
	}
}
