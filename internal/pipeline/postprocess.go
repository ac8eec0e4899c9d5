// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/report"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// ExtractUsedSIDs returns the distinct snippet identifiers cited anywhere
// in the report, sorted numerically.
func ExtractUsedSIDs(reportText string) []string {
	seen := make(map[int]bool)
	for _, n := range report.CitationNums(reportText) {
		seen[n] = true
	}

	nums := make([]int, 0, len(seen))
	for n := range seen {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	sids := make([]string, len(nums))
	for i, n := range nums {
		sids[i] = fmt.Sprintf("S%d", n)
	}
	return sids
}

// Keyword groups for the evidence-strength heuristic. Clinical markers win
// over preclinical ones.
var (
	clinicalMarkers = []string{
		"randomized", "randomised", "double-blind", "placebo", "clinical trial",
	}
	preclinicalMarkers = []string{
		"mouse", "mice", "rat", "rodent", "animal model", "preclinical",
	}
)

// InferEvidenceStrength classifies the retrieved snippets by the study
// types their text mentions. It is a coarse signal for the verdict header,
// not a systematic appraisal.
func InferEvidenceStrength(snippets []types.Snippet) string {
	var b strings.Builder
	for _, s := range snippets {
		b.WriteString(s.Title)
		b.WriteString(" ")
		b.WriteString(s.Text)
		b.WriteString(" ")
	}
	text := strings.ToLower(b.String())

	for _, k := range clinicalMarkers {
		if strings.Contains(text, k) {
			return "Human clinical signal present in retrieved snippets"
		}
	}
	for _, k := range preclinicalMarkers {
		if strings.Contains(text, k) {
			return "Preclinical / animal evidence dominates retrieved snippets"
		}
	}
	return "Mechanistic / indirect evidence in retrieved snippets"
}

// MakeVerdict summarizes how well the report is supported: heavy use of
// the insufficient-evidence fallback or an explicit no-direct-evidence
// statement downgrades the verdict.
func MakeVerdict(reportText, strength string) string {
	lower := strings.ToLower(reportText)

	if strings.Count(lower, "insufficient evidence") >= 3 {
		return "Limited support in retrieved snippets; many claims are marked as insufficient."
	}
	if strings.Contains(lower, "no direct evidence") {
		return "No direct clinical evidence in retrieved snippets; conclusions are mainly mechanistic/preclinical."
	}
	return fmt.Sprintf("Grounded summary from retrieved snippets. (%s)", strength)
}

// AddHeaderBlock prepends the verdict, evidence strength, and citations
// line to the report.
func AddHeaderBlock(reportText string, snippets []types.Snippet) string {
	used := ExtractUsedSIDs(reportText)
	strength := InferEvidenceStrength(snippets)
	verdict := MakeVerdict(reportText, strength)

	citations := "None"
	if len(used) > 0 {
		citations = strings.Join(used, ", ")
	}

	header := fmt.Sprintf(
		"**Verdict:** %s\n\n**Evidence strength (from retrieved snippets):** %s\n\n**Citations used:** %s\n\n---\n\n",
		verdict, strength, citations)
	return header + reportText
}
