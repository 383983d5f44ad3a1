package scan

import (
	"os"
	"path/filepath"
	"testing"
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

func TestTreeRecursesAndClassifies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"))
	writeFile(t, filepath.Join(root, "a.jpg.supplemental-metadata.json"))
	writeFile(t, filepath.Join(root, "album", "b.mp4"))

	entries, err := Tree(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	sidecars, err := Sidecars(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(sidecars) != 1 || sidecars[0].Name != "a.jpg.supplemental-metadata.json" {
		t.Fatalf("unexpected sidecars: %+v", sidecars)
	}

	content, err := ContentFiles(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(content) != 2 {
		t.Fatalf("expected 2 content files, got %d", len(content))
	}
}

func TestDirIsNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.jpg"))
	writeFile(t, filepath.Join(root, "nested", "deep.jpg"))

	entries, err := Dir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "top.jpg" {
		t.Fatalf("expected only the top-level file, got %+v", entries)
	}
}

func TestIsSidecarCaseInsensitive(t *testing.T) {
	e := Entry{Name: "PHOTO.JSON"}
	if !e.IsSidecar() {
		t.Fatal("uppercase .JSON should classify as sidecar")
	}
	if (Entry{Name: "photo.jpg"}).IsSidecar() {
		t.Fatal("jpg classified as sidecar")
	}
}
