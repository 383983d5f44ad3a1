// Package scan walks an export directory tree and classifies its entries.
//
// Each reconciliation phase re-derives its working set from the current
// on-disk state rather than a cached index; a phase must observe every rename
// committed by the phase before it.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry describes a single file discovered in the export tree.
type Entry struct {
	// Path is the absolute path to the file.
	Path string
	// Dir is the directory component of Path.
	Dir string
	// Name is the filename component of Path.
	Name string
}

// IsSidecar reports whether the entry is a JSON metadata sidecar. Every other
// file in the export is treated as content.
func (e Entry) IsSidecar() bool {
	return strings.EqualFold(filepath.Ext(e.Name), ".json")
}

// Tree lists every regular file under root, recursively, in walk order.
func Tree(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		entries = append(entries, newEntry(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Sidecars lists the JSON sidecar files under root.
func Sidecars(root string) ([]Entry, error) {
	return treeFiltered(root, func(e Entry) bool { return e.IsSidecar() })
}

// ContentFiles lists the non-sidecar files under root.
func ContentFiles(root string) ([]Entry, error) {
	return treeFiltered(root, func(e Entry) bool { return !e.IsSidecar() })
}

// Dir lists the regular files directly inside dir, sorted by name. Sidecar
// candidate search is strictly directory-local; export subdirectories are
// self-contained.
func Dir(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() || !d.Type().IsRegular() {
			continue
		}
		entries = append(entries, newEntry(filepath.Join(dir, d.Name())))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func treeFiltered(root string, keep func(Entry) bool) ([]Entry, error) {
	all, err := Tree(root)
	if err != nil {
		return nil, err
	}
	filtered := all[:0]
	for _, e := range all {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func newEntry(path string) Entry {
	return Entry{
		Path: path,
		Dir:  filepath.Dir(path),
		Name: filepath.Base(path),
	}
}
