// Package detect wraps the external format-detection capability.
package detect

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Detector resolves a content file's true encoded format. Implementations
// return a MIME type identifier such as "image/png".
type Detector interface {
	Detect(ctx context.Context, path string) (string, error)
}

// FileCommand detects formats by shelling out to file(1), one path at a time.
type FileCommand struct {
	Binary string
}

// NewFileCommand constructs a detector around the given binary name.
func NewFileCommand(binary string) FileCommand {
	return FileCommand{Binary: binary}
}

// Detect runs `file --brief --mime-type` against the path and returns the
// trimmed, lowercased MIME type.
func (d FileCommand) Detect(ctx context.Context, path string) (string, error) {
	binary := strings.TrimSpace(d.Binary)
	if binary == "" {
		binary = "file"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("format detect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "--brief", "--mime-type", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("format detect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("format detect: %w", err)
	}

	mime := strings.ToLower(strings.TrimSpace(string(output)))
	if mime == "" {
		return "", fmt.Errorf("format detect: empty result for %s", path)
	}
	// Some file(1) builds append "; charset=..." even in brief mode.
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime, nil
}

// Func adapts a plain function into a Detector, used by tests.
type Func func(ctx context.Context, path string) (string, error)

func (f Func) Detect(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}
