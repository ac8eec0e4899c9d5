// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate computes citation-coverage metrics for generated reports.
// A bullet is grounded when it carries at least one bracket citation [S#]
// naming a supplied snippet; the coverage percentage over all bullets is
// the report's trust score.
package validate

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/report"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// sidRe parses snippet identifiers of the form "S12". Matching is
// case-insensitive to tolerate hand-edited snippet files; malformed
// identifiers are skipped, not fatal.
var sidRe = regexp.MustCompile(`(?i)^S(\d+)$`)

// MaxSID returns the highest numeric identifier among the snippets, or 0
// when none parse.
func MaxSID(snippets []types.Snippet) int {
	maxVal := 0
	for _, s := range snippets {
		m := sidRe.FindStringSubmatch(strings.TrimSpace(s.SID))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxVal {
			maxVal = n
		}
	}
	return maxVal
}

// Validate scans the full report for bullet lines and computes coverage
// and bad-reference metrics against the supplied snippets. The result is
// always derived fresh from the given text.
func Validate(reportText string, snippets []types.Snippet) types.ValidationResult {
	maxSID := MaxSID(snippets)

	var bullets []string
	for _, b := range report.Extract(reportText) {
		bullets = append(bullets, b.Text)
	}

	var missing []string
	var cited []int
	for _, b := range bullets {
		nums := report.CitationNums(b)
		if len(nums) == 0 {
			missing = append(missing, b)
			continue
		}
		cited = append(cited, nums...)
	}

	return types.ValidationResult{
		NBullets:          len(bullets),
		NMissingCitations: len(missing),
		CoveragePct:       coveragePct(len(bullets), len(missing)),
		BadReferenceNums:  badRefs(cited, maxSID),
		MissingExamples:   capExamples(missing),
	}
}

// ValidateBullets applies the same rules to an explicit bullet list,
// independent of document position. With no snippets every bullet is
// reported missing and the bad-reference scan is skipped.
func ValidateBullets(bullets []string, snippets []types.Snippet) types.ValidationResult {
	if len(snippets) == 0 {
		kept := trimBullets(bullets)
		return types.ValidationResult{
			NBullets:          len(kept),
			NMissingCitations: len(kept),
			CoveragePct:       0,
			MissingExamples:   capExamples(kept),
		}
	}

	maxSID := MaxSID(snippets)
	kept := trimBullets(bullets)

	var missing []string
	var cited []int
	for _, b := range kept {
		nums := report.CitationNums(b)
		if len(nums) == 0 {
			missing = append(missing, b)
			continue
		}
		cited = append(cited, nums...)
	}

	return types.ValidationResult{
		NBullets:          len(kept),
		NMissingCitations: len(missing),
		CoveragePct:       coveragePct(len(kept), len(missing)),
		BadReferenceNums:  badRefs(cited, maxSID),
		MissingExamples:   capExamples(missing),
	}
}

// trimBullets drops empty entries and trims the rest.
func trimBullets(bullets []string) []string {
	var kept []string
	for _, b := range bullets {
		if t := strings.TrimSpace(b); t != "" {
			kept = append(kept, t)
		}
	}
	return kept
}

// coveragePct computes the percentage of cited bullets, rounded to two
// decimals. Zero bullets yields zero coverage.
func coveragePct(nBullets, nMissing int) float64 {
	if nBullets == 0 {
		return 0
	}
	pct := float64(nBullets-nMissing) / float64(nBullets) * 100
	return math.Round(pct*100) / 100
}

// badRefs returns the sorted unique citation numbers outside [1, maxSID].
// With maxSID 0 there are no snippets to range-check against, so the scan
// is skipped entirely.
func badRefs(cited []int, maxSID int) []int {
	if maxSID == 0 {
		return nil
	}
	seen := make(map[int]bool)
	for _, n := range cited {
		if n < 1 || n > maxSID {
			seen[n] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	bad := make([]int, 0, len(seen))
	for n := range seen {
		bad = append(bad, n)
	}
	sort.Ints(bad)
	return bad
}

// capExamples bounds the echoed bullet list.
func capExamples(bullets []string) []string {
	if len(bullets) > types.MaxMissingExamples {
		return bullets[:types.MaxMissingExamples]
	}
	return bullets
}
