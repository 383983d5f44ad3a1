// Package config loads, validates, and normalizes takeoutfix configuration.
//
// Configuration is TOML with a small surface: directories for logs and the run
// journal, the external detector/embedder binaries, extension correction and
// embedding toggles, and logging output settings. Loading applies defaults,
// expands ~ in paths, and validates the result before any command runs.
package config
