// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repair runs the bounded agentic loop that raises a report's
// citation coverage: validate, select uncited bullets, request batch
// replacements from a backend, patch them in place, and revalidate until
// the coverage target holds or retries run out.
package repair

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/report"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	// DefaultMaxRetries bounds the repair loop when no override is given.
	DefaultMaxRetries = 3

	// DefaultTargetCoveragePct is the coverage threshold for PASS.
	DefaultTargetCoveragePct = 90.0
)

// Options configures one repair invocation.
type Options struct {
	// MaxRetries bounds the number of repair attempts. Zero or negative
	// uses DefaultMaxRetries.
	MaxRetries int

	// TargetCoveragePct is the coverage threshold for PASS. Zero or
	// negative uses DefaultTargetCoveragePct.
	TargetCoveragePct float64
}

// Outcome is the result of a repair invocation. Every completed call
// carries final metrics and the attempt count; an unmet target surfaces
// through the metrics, not as an error.
type Outcome struct {
	// Report is the final report text, patched or untouched.
	Report string

	// Overall is the validation over the whole final report.
	Overall types.ValidationResult

	// Section is the validation restricted to the Evidence Summary
	// section, falling back to whole-document scope.
	Section types.ValidationResult

	// AgenticUsed reports whether any repair attempt ran.
	AgenticUsed bool

	// Attempts is the number of attempts performed.
	Attempts int

	// Log records each attempt's post-patch validation.
	Log []types.RepairAttempt

	// RewrittenInsufficient counts bullets replaced with the fallback
	// sentence across all attempts.
	RewrittenInsufficient int
}

// Run validates the report and, when coverage is below target or bad
// references are present, repairs uncited bullets through the backend
// under a bounded retry loop. Only bullets with zero citation tokens enter
// the candidate set; bullets whose citations are merely out of range are
// reported but left untouched. A backend error is not caught inside the
// loop: it aborts the whole call and no partial attempt is committed.
func Run(ctx context.Context, reportText string, snippets []types.Snippet, backend Backend, opts Options, w io.Writer) (Outcome, error) {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	target := opts.TargetCoveragePct
	if target <= 0 {
		target = DefaultTargetCoveragePct
	}

	// No evidence: nothing can be cited, so the backend is never invoked
	// and everything is reported missing.
	if len(snippets) == 0 {
		var all []string
		for _, b := range report.Extract(reportText) {
			all = append(all, b.Text)
		}
		return Outcome{
			Report:  reportText,
			Overall: validate.ValidateBullets(all, nil),
			Section: validate.ValidateBullets(report.EvidenceSummaryBullets(reportText), nil),
		}, nil
	}

	baseline := validate.Validate(reportText, snippets)
	if baseline.Passes(target) {
		fmt.Fprintf(w, "baseline grounding ok: coverage %.2f%%\n", baseline.CoveragePct)
		return Outcome{
			Report:  reportText,
			Overall: baseline,
			Section: validate.ValidateBullets(report.EvidenceSummaryBullets(reportText), snippets),
		}, nil
	}

	maxSID := validate.MaxSID(snippets)
	evidence := evidenceBlock(snippets)

	out := Outcome{Report: reportText}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		lines := strings.Split(out.Report, "\n")
		bullets := report.Extract(out.Report)

		// Candidate set: bullets with zero citation tokens. Positions are
		// fixed here, before any mutation in this attempt.
		var targets []report.Bullet
		for _, b := range bullets {
			if !report.HasCitation(b.Text) {
				targets = append(targets, b)
			}
		}
		if len(targets) == 0 {
			break
		}

		fmt.Fprintf(w, "repair attempt %d: fixing %d uncited bullet(s)\n", attempt, len(targets))

		req := Request{
			EvidenceText: evidence,
			Bullets:      claims(targets),
			MaxSID:       maxSID,
			Count:        len(targets),
		}

		raw, err := backend.Repair(ctx, req)
		if err != nil {
			return Outcome{}, fmt.Errorf("repair attempt %d: %w", attempt, err)
		}

		repaired := ParseReplacements(raw, originals(targets))
		out.RewrittenInsufficient += countInsufficient(repaired)

		for i, t := range targets {
			lines[t.LineIndex] = repaired[i]
		}
		out.Report = strings.Join(lines, "\n")

		out.AgenticUsed = true
		out.Attempts = attempt

		v := validate.Validate(out.Report, snippets)
		out.Log = append(out.Log, types.RepairAttempt{
			Attempt:         attempt,
			BulletsRepaired: len(targets),
			Validation:      v,
		})

		if v.Passes(target) {
			fmt.Fprintf(w, "repair pass on attempt %d: coverage %.2f%%\n", attempt, v.CoveragePct)
			break
		}
	}

	out.Overall = validate.Validate(out.Report, snippets)
	out.Section = validate.ValidateBullets(report.EvidenceSummaryBullets(out.Report), snippets)
	return out, nil
}

// evidenceBlock joins snippet text blocks for the backend request.
func evidenceBlock(snippets []types.Snippet) string {
	texts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if t := strings.TrimSpace(s.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n")
}

// claims strips bullet markers for the backend request.
func claims(targets []report.Bullet) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = report.StripMarker(t.Text)
	}
	return out
}

// originals returns the unmodified bullet lines used for padding.
func originals(targets []report.Bullet) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Text
	}
	return out
}
