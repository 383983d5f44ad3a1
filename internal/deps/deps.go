// Package deps verifies the external binaries takeoutfix shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"takeoutfix/internal/config"
)

// Requirement names used across the CLI.
const (
	DetectorName = "format detector"
	EmbedderName = "metadata embedder"
)

// Requirement defines an external dependency takeoutfix relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external tools required for a full run under the
// provided configuration. The detector is mandatory; the embedder is only
// required while embedding is enabled.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        DetectorName,
			Command:     cfg.DetectorBinary(),
			Description: "detects a content file's true MIME type",
		},
	}
	reqs = append(reqs, Requirement{
		Name:        EmbedderName,
		Command:     cfg.EmbedderBinary(),
		Description: "writes sidecar metadata into content files",
		Optional:    !cfg.Embedder.Enabled,
	})
	return reqs
}

// MarkEmbedderOptional downgrades the embedder requirement for runs that skip
// the embedding phase.
func MarkEmbedderOptional(requirements []Requirement) []Requirement {
	out := make([]Requirement, len(requirements))
	copy(out, requirements)
	for i := range out {
		if out[i].Name == EmbedderName {
			out[i].Optional = true
		}
	}
	return out
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the first required dependency that is unavailable,
// or nil when all required tools are present.
func MissingRequired(statuses []Status) *Status {
	for i := range statuses {
		if !statuses[i].Optional && !statuses[i].Available {
			return &statuses[i]
		}
	}
	return nil
}
