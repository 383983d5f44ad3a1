package sidecar

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Marker is the canonical metadata marker segment of a sidecar filename.
const Marker = "supplemental-metadata"

// CanonicalSuffix is the canonical sidecar suffix appended to a content filename.
const CanonicalSuffix = "." + Marker + ".json"

// abbreviatedMarkers are the known truncated marker spellings, longest first
// so suffix checks never fire on a longer variant's tail.
var abbreviatedMarkers = []string{
	"supplemental-metadat",
	"supplemental-meta",
	"supplem",
}

// counterMarkers are the marker spellings tried when stripping a misplaced
// counter, full marker first.
var counterMarkers = []string{
	"." + Marker,
	".supplemental-metadat",
	".supplemental-meta",
}

// AbbreviatedSuffixes lists the malformed sidecar suffixes checked by the
// matcher's abbreviated-suffix fallback, in priority order.
func AbbreviatedSuffixes() []string {
	return []string{
		".supplemental-meta.json",
		".supplemental-metadat.json",
		".supplem.json",
	}
}

// CanonicalName returns the canonical sidecar filename for a content filename.
func CanonicalName(contentName string) string {
	return contentName + CanonicalSuffix
}

// IsCanonical reports whether name already carries the canonical suffix.
func IsCanonical(name string) bool {
	return hasSuffixFold(name, CanonicalSuffix)
}

// NormalizeName returns the NFC form of a filename. Exports written on macOS
// arrive NFD; comparisons must not treat the two encodings of the same name
// as distinct files.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// EqualNames compares two filenames case-insensitively after NFC normalization.
func EqualNames(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}

// RepairAbbreviation maps a sidecar name ending in a truncated marker to its
// canonical form. The second return value is false when no known abbreviated
// marker is present.
func RepairAbbreviation(name string) (string, bool) {
	if IsCanonical(name) {
		return "", false
	}
	for _, marker := range abbreviatedMarkers {
		suffix := "." + marker + ".json"
		if hasSuffixFold(name, suffix) {
			return name[:len(name)-len(suffix)] + CanonicalSuffix, true
		}
	}
	return "", false
}

// HasCounterSuffix reports whether name ends in "(<digits>).json".
func HasCounterSuffix(name string) bool {
	_, _, ok := splitCounterSuffix(name)
	return ok
}

// RepairMisplacedCounter maps a sidecar name whose disambiguation counter was
// appended after the metadata marker back to its canonical form:
//
//	photo.jpg.supplemental-metadata(3).json -> photo(3).jpg.supplemental-metadata.json
//
// The second return value is false when the name has no trailing counter or no
// known marker spelling precedes it.
func RepairMisplacedCounter(name string) (string, bool) {
	rest, counter, ok := splitCounterSuffix(name)
	if !ok {
		return "", false
	}

	var original string
	found := false
	for _, marker := range counterMarkers {
		if hasSuffixFold(rest, marker) {
			original = rest[:len(rest)-len(marker)]
			found = true
			break
		}
	}
	if !found || original == "" {
		return "", false
	}

	base := original
	ext := ""
	if idx := strings.LastIndexByte(original, '.'); idx > 0 {
		base = original[:idx]
		ext = original[idx+1:]
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('(')
	b.WriteString(counter)
	b.WriteByte(')')
	if ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	b.WriteString(CanonicalSuffix)
	return b.String(), true
}

// MatchesPattern reports whether a directory entry matches the matcher's
// wildcard pattern "<contentBase>.*.supplemental-metadata.json". The middle
// segment (extension, possibly with a counter) is unconstrained. Comparison is
// case-insensitive and NFC-normalized.
func MatchesPattern(candidate, contentBase string) bool {
	candidate = NormalizeName(candidate)
	prefix := NormalizeName(contentBase) + "."
	if len(candidate) < len(prefix)+len(CanonicalSuffix) {
		return false
	}
	return hasPrefixFold(candidate, prefix) && hasSuffixFold(candidate, CanonicalSuffix)
}

// splitCounterSuffix splits "x(12).json" into ("x", "12", true). Markers and
// filename text are ASCII here, so byte slicing under EqualFold is safe.
func splitCounterSuffix(name string) (rest, counter string, ok bool) {
	const jsonExt = ".json"
	if !hasSuffixFold(name, jsonExt) {
		return "", "", false
	}
	trimmed := name[:len(name)-len(jsonExt)]
	if !strings.HasSuffix(trimmed, ")") {
		return "", "", false
	}
	trimmed = trimmed[:len(trimmed)-1]

	digits := 0
	for digits < len(trimmed) {
		c := trimmed[len(trimmed)-1-digits]
		if c < '0' || c > '9' {
			break
		}
		digits++
	}
	if digits == 0 {
		return "", "", false
	}
	idx := len(trimmed) - digits
	if idx == 0 || trimmed[idx-1] != '(' {
		return "", "", false
	}
	return trimmed[:idx-1], trimmed[idx:], true
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
