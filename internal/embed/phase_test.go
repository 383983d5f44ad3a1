package embed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"takeoutfix/internal/stage"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

type call struct {
	content string
	sidecar string
}

func capture(calls *[]call) Embedder {
	return Func(func(ctx context.Context, contentPath, sidecarPath string) error {
		*calls = append(*calls, call{content: contentPath, sidecar: sidecarPath})
		return nil
	})
}

func TestEmbedsFilesWithCanonicalSidecars(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "photo.jpg"))
	writeFile(t, filepath.Join(root, "photo.jpg.supplemental-metadata.json"))
	writeFile(t, filepath.Join(root, "orphan.jpg"))

	var calls []call
	phase := NewPhase(nil, capture(&calls), nil, "edited")
	run := &stage.Run{ID: "test", Root: root}
	if err := phase.Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 embed call, got %d", len(calls))
	}
	if filepath.Base(calls[0].content) != "photo.jpg" {
		t.Fatalf("unexpected content path %q", calls[0].content)
	}
	if filepath.Base(calls[0].sidecar) != "photo.jpg.supplemental-metadata.json" {
		t.Fatalf("unexpected sidecar path %q", calls[0].sidecar)
	}
}

func TestExcludeSubstringSkipsFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "photo-edited.jpg"))
	writeFile(t, filepath.Join(root, "photo-edited.jpg.supplemental-metadata.json"))

	var calls []call
	phase := NewPhase(nil, capture(&calls), nil, "edited")
	run := &stage.Run{ID: "test", Root: root}
	if err := phase.Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 0 {
		t.Fatal("edited files must not be embedded")
	}
	if run.Skipped != 1 {
		t.Fatalf("expected 1 skip, got %+v", run)
	}
}

func TestEmbedFailureIsPerFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"))
	writeFile(t, filepath.Join(root, "a.jpg.supplemental-metadata.json"))
	writeFile(t, filepath.Join(root, "b.jpg"))
	writeFile(t, filepath.Join(root, "b.jpg.supplemental-metadata.json"))

	var calls []call
	failing := Func(func(ctx context.Context, contentPath, sidecarPath string) error {
		calls = append(calls, call{content: contentPath})
		if filepath.Base(contentPath) == "a.jpg" {
			return errors.New("exiftool exploded")
		}
		return nil
	})

	phase := NewPhase(nil, failing, nil, "")
	run := &stage.Run{ID: "test", Root: root}
	if err := phase.Execute(context.Background(), run); err != nil {
		t.Fatalf("one failed file must not abort the phase: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected both files attempted, got %d calls", len(calls))
	}
	if run.Warned != 1 {
		t.Fatalf("expected 1 warning, got %+v", run)
	}
}

func TestDryRunNeverCallsEmbedder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "photo.jpg"))
	writeFile(t, filepath.Join(root, "photo.jpg.supplemental-metadata.json"))

	var calls []call
	phase := NewPhase(nil, capture(&calls), nil, "")
	run := &stage.Run{ID: "test", Root: root, DryRun: true}
	if err := phase.Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Fatal("dry run must not invoke the embedder")
	}
}
