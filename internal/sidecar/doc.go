// Package sidecar defines the canonical sidecar naming scheme and the pure
// repair functions for the known export-tool malformations.
//
// A content file's metadata sidecar is canonically named
// "<content-filename>.supplemental-metadata.json". Export tooling is known to
// mangle that name two ways: the marker gets truncated to fit a filename
// length limit ("...supplemental-meta.json"), and the disambiguation counter
// for colliding names gets appended after the marker instead of after the
// original filename ("photo.jpg.supplemental-metadata(3).json"). Each repair
// is a pure function from a raw name to its canonical form, so the phases that
// apply them stay trivial and the parsing is testable without a filesystem.
package sidecar
