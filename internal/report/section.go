// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"regexp"
	"strings"
)

// Evidence Summary section delimiters. The generated report uses a fixed
// section layout, but headings may carry Markdown hashes or bold markers,
// so the patterns are permissive about decoration.
var (
	evidenceStartRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?\*{0,2}2\)\s*Evidence Summary`)
	evidenceEndRe   = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?\*{0,2}3\)\s*Biological Rationale`)
)

// EvidenceSummaryBullets returns the bullet lines under the
// "2) Evidence Summary" heading, up to the "3) Biological Rationale"
// heading. When the start heading is absent, or the section contains no
// bullets, it falls back to every bullet in the document.
func EvidenceSummaryBullets(text string) []string {
	lines := strings.Split(text, "\n")

	start, end := -1, len(lines)
	for i, line := range lines {
		if start == -1 && evidenceStartRe.MatchString(line) {
			start = i
			continue
		}
		if start != -1 && evidenceEndRe.MatchString(line) {
			end = i
			break
		}
	}

	// The heading line is a delimiter, not content; an undecorated
	// "2) Evidence Summary" would otherwise match the bullet grammar.
	scope := lines
	if start != -1 {
		scope = lines[start+1 : end]
	}

	var bullets []string
	for _, line := range scope {
		trimmed := strings.TrimSpace(line)
		if markerRe.MatchString(trimmed) {
			bullets = append(bullets, trimmed)
		}
	}
	if start != -1 && len(bullets) == 0 {
		// Section found but empty; fall back to the whole document.
		for _, b := range Extract(text) {
			bullets = append(bullets, b.Text)
		}
	}
	return bullets
}
