// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report locates and canonicalizes bullet-formatted claims inside
// generated report text. It owns the single bullet grammar shared by the
// citation validator and the repair loop, so both always agree on which
// lines are claims.
package report

import (
	"regexp"
	"strings"
)

// Bullet grammar and citation grammar.
var (
	// markerRe matches a trimmed bullet line: "- ", "* ", or "1) " prefixes.
	markerRe = regexp.MustCompile(`^(\*|-|\d+\))\s+`)

	// citationRe matches bracket citations [S1], [S12]. The S is
	// case-sensitive and no internal whitespace is allowed; a bare "S3"
	// outside brackets never counts.
	citationRe = regexp.MustCompile(`\[S(\d+)\]`)
)

// Bullet is one bullet line with its position in the report.
type Bullet struct {
	// LineIndex is the zero-based line number in the report text.
	LineIndex int

	// Text is the trimmed bullet line, marker included.
	Text string
}

// IsBullet reports whether the trimmed line matches the bullet grammar.
func IsBullet(line string) bool {
	return markerRe.MatchString(strings.TrimSpace(line))
}

// Extract returns every bullet line in the text, in document order, with
// its line index. Pure; the input is never modified.
func Extract(text string) []Bullet {
	var bullets []Bullet
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if markerRe.MatchString(trimmed) {
			bullets = append(bullets, Bullet{LineIndex: i, Text: trimmed})
		}
	}
	return bullets
}

// HasCitation reports whether the line contains at least one [S#] token.
func HasCitation(line string) bool {
	return citationRe.MatchString(line)
}

// CitationNums returns every [S#] number in the text, in order of
// appearance, duplicates included.
func CitationNums(text string) []int {
	matches := citationRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		nums = append(nums, atoiDigits(m[1]))
	}
	return nums
}

// StripMarker removes the leading bullet marker from a trimmed line,
// returning the bare claim text. Lines without a marker are returned
// trimmed but otherwise unchanged.
func StripMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	if loc := markerRe.FindStringIndex(trimmed); loc != nil {
		return strings.TrimSpace(trimmed[loc[1]:])
	}
	return trimmed
}

// Normalize canonicalizes a bullet line: surrounding whitespace is
// stripped, any run of leading marker characters collapses to a single
// "- " marker, and the rest of the line (trailing citation brackets
// included) is preserved verbatim. Total and idempotent:
// Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(line string) string {
	rest := strings.TrimSpace(line)
	rest = strings.TrimLeft(rest, "-*")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "-"
	}
	return "- " + rest
}

// atoiDigits converts a digit-only string already vetted by a regexp.
// Overflow is not a concern for citation ordinals.
func atoiDigits(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
