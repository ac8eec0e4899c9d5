// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"context"
	"regexp"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/report"
)

// InsufficientFallback is the fixed sentence the backend substitutes for a
// claim the evidence cannot support.
const InsufficientFallback = "Insufficient evidence in provided snippets."

// Request is the structured input to the repair backend: the evidence to
// cite from, the claims to fix in order, and the citation range. Prompt
// wording is an implementation detail of each backend.
type Request struct {
	// EvidenceText is the concatenated snippet text block.
	EvidenceText string

	// Bullets lists the claims needing citations, marker stripped, in
	// original report order.
	Bullets []string

	// MaxSID is the highest valid citation number; backends must not cite
	// outside [1, MaxSID].
	MaxSID int

	// Count is the exact number of replacement lines requested. Always
	// equals len(Bullets).
	Count int
}

// Backend turns a batch of uncited bullets into replacement lines. Each
// implementation handles one serving endpoint and returns the raw model
// output; it may be non-deterministic, so callers never trust the output
// count or format without parsing. Mirrors the Strategy pattern used for
// generation backends so tests can supply a mock.
type Backend interface {
	Repair(ctx context.Context, req Request) (string, error)
}

// ordinalRe accepts replacement lines in the requested numbering format:
// "1) claim text". Anything else in the model output is discarded.
var ordinalRe = regexp.MustCompile(`^\s*\d+\)\s+(.*)$`)

// ParseReplacements extracts usable replacement lines from raw backend
// output and enforces the exact-count contract: too few accepted lines are
// padded with the corresponding originals, too many are truncated. Every
// returned line is normalized, so the result can be patched straight into
// the report. len(result) == len(originals) always.
func ParseReplacements(raw string, originals []string) []string {
	var accepted []string
	for _, line := range strings.Split(raw, "\n") {
		m := ordinalRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		accepted = append(accepted, report.Normalize(m[1]))
		if len(accepted) == len(originals) {
			break
		}
	}

	for i := len(accepted); i < len(originals); i++ {
		accepted = append(accepted, report.Normalize(originals[i]))
	}
	return accepted
}

// countInsufficient counts replacement lines carrying the fallback sentence.
func countInsufficient(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.Contains(line, "Insufficient evidence") {
			n++
		}
	}
	return n
}
