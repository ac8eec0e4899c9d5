// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Metadata identifies the query behind a synthesis run.
type Metadata struct {
	// Disease is the disease term as given by the user.
	Disease string `json:"disease" yaml:"disease"`

	// Drug is the drug name as given by the user.
	Drug string `json:"drug" yaml:"drug"`

	// ChEMBLID is the resolved molecule identifier, empty if unresolved.
	ChEMBLID string `json:"chembl_id,omitempty" yaml:"chembl_id,omitempty"`

	// ChEMBLPreferredName is ChEMBL's preferred name for the molecule.
	ChEMBLPreferredName string `json:"chembl_preferred_name,omitempty" yaml:"chembl_preferred_name,omitempty"`

	// ChEMBLMatchReason explains how the drug name was matched.
	ChEMBLMatchReason string `json:"chembl_match_reason,omitempty" yaml:"chembl_match_reason,omitempty"`
}

// Source is one entry of a report's Sources section.
type Source struct {
	// SID is the snippet identifier cited in the report.
	SID string `json:"sid" yaml:"sid"`

	// PMID is the PubMed identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// URL links to the article on PubMed.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Result is the output of one synthesis invocation: the final report, its
// grounding metrics, and the repair-loop accounting.
type Result struct {
	// Metadata identifies the disease+drug query.
	Metadata Metadata `json:"metadata" yaml:"metadata"`

	// Molecule carries ChEMBL context when resolution succeeded.
	Molecule *MoleculeProfile `json:"molecule,omitempty" yaml:"molecule,omitempty"`

	// Snippets are the evidence units the report may cite.
	Snippets []Snippet `json:"snippets" yaml:"snippets"`

	// Report is the final report text, including the verdict header.
	Report string `json:"report" yaml:"report"`

	// TrustScore is the overall citation coverage percentage.
	TrustScore float64 `json:"trust_score" yaml:"trust_score"`

	// MetricsAll is the validation over the whole report.
	MetricsAll ValidationResult `json:"metrics_all" yaml:"metrics_all"`

	// MetricsSection is the validation restricted to the Evidence Summary
	// section, falling back to whole-document scope when the heading is
	// absent.
	MetricsSection ValidationResult `json:"metrics_section" yaml:"metrics_section"`

	// AgenticUsed reports whether the repair loop ran at least once.
	AgenticUsed bool `json:"agentic_used" yaml:"agentic_used"`

	// Attempts is the number of repair attempts performed.
	Attempts int `json:"agentic_attempts" yaml:"agentic_attempts"`

	// RepairLog records per-attempt validation outcomes.
	RepairLog []RepairAttempt `json:"repair_log,omitempty" yaml:"repair_log,omitempty"`

	// RewrittenInsufficient counts bullets the repair backend replaced with
	// the fixed insufficient-evidence fallback sentence.
	RewrittenInsufficient int `json:"n_rewritten_to_insufficient" yaml:"n_rewritten_to_insufficient"`

	// Sources lists the snippet provenance for the report's Sources section.
	Sources []Source `json:"sources" yaml:"sources"`
}
