// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MaxMissingExamples bounds the number of uncited bullets echoed back in a
// ValidationResult.
const MaxMissingExamples = 5

// ValidationResult summarizes citation coverage for a report or bullet list.
// It is recomputed fresh from current report state on every call, never
// updated incrementally.
type ValidationResult struct {
	// NBullets is the number of bullet lines scanned.
	NBullets int `json:"n_bullets" yaml:"n_bullets"`

	// NMissingCitations counts bullets with no [S#] citation token.
	NMissingCitations int `json:"n_missing_citations" yaml:"n_missing_citations"`

	// CoveragePct is (NBullets-NMissingCitations)/NBullets*100, rounded to
	// two decimals, or 0 when NBullets is 0.
	CoveragePct float64 `json:"coverage_pct" yaml:"coverage_pct"`

	// BadReferenceNums lists citation numbers outside [1, maxSID], sorted
	// and deduplicated. Empty when no snippets were supplied.
	BadReferenceNums []int `json:"bad_reference_nums" yaml:"bad_reference_nums"`

	// MissingExamples echoes up to MaxMissingExamples uncited bullets.
	MissingExamples []string `json:"missing_examples" yaml:"missing_examples"`
}

// Passes reports whether the result meets the coverage target with no bad
// references.
func (v ValidationResult) Passes(targetCoveragePct float64) bool {
	return v.CoveragePct >= targetCoveragePct && len(v.BadReferenceNums) == 0
}

// RepairAttempt records one round of the repair loop.
type RepairAttempt struct {
	// Attempt is the 1-based attempt number.
	Attempt int `json:"attempt" yaml:"attempt"`

	// BulletsRepaired is the number of bullets sent to the repair backend.
	BulletsRepaired int `json:"bullets_repaired" yaml:"bullets_repaired"`

	// Validation is the full-report validation after patching this attempt.
	Validation ValidationResult `json:"validation" yaml:"validation"`
}
