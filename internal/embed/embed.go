// Package embed drives the external metadata-embedding tool that writes
// sidecar JSON fields into content files.
package embed

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Embedder writes a sidecar's metadata into its content file, in place.
type Embedder interface {
	Embed(ctx context.Context, contentPath, sidecarPath string) error
}

// ExifTool embeds metadata by shelling out to exiftool, one file at a time.
type ExifTool struct {
	Binary string
}

// NewExifTool constructs an embedder around the given binary name.
func NewExifTool(binary string) ExifTool {
	return ExifTool{Binary: binary}
}

// Embed copies the fixed field set (timestamps, GPS coordinates, keywords,
// description) from the sidecar JSON into the content file's embedded
// metadata, destructively in place.
func (e ExifTool) Embed(ctx context.Context, contentPath, sidecarPath string) error {
	binary := strings.TrimSpace(e.Binary)
	if binary == "" {
		binary = "exiftool"
	}
	contentPath = strings.TrimSpace(contentPath)
	sidecarPath = strings.TrimSpace(sidecarPath)
	if contentPath == "" || sidecarPath == "" {
		return errors.New("embed: empty path")
	}

	args := []string{
		"-overwrite_original",
		"-d", "%s",
		"-tagsfromfile", sidecarPath,
		"-GPSLatitude<GeoDataLatitude",
		"-GPSLatitudeRef<GeoDataLatitude",
		"-GPSLongitude<GeoDataLongitude",
		"-GPSLongitudeRef<GeoDataLongitude",
		"-GPSAltitude<GeoDataAltitude",
		"-Keywords<Tags",
		"-Subject<Tags",
		"-Caption-Abstract<Description",
		"-ImageDescription<Description",
		"-DateTimeOriginal<PhotoTakenTimeTimestamp",
		"-FileModifyDate<PhotoTakenTimeTimestamp",
		"--",
		contentPath,
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("embed metadata: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Func adapts a plain function into an Embedder, used by tests.
type Func func(ctx context.Context, contentPath, sidecarPath string) error

func (f Func) Embed(ctx context.Context, contentPath, sidecarPath string) error {
	return f(ctx, contentPath, sidecarPath)
}
