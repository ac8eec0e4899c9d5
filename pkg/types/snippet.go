// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine pipeline.
package types

// Snippet is an atomic evidence unit presented to the generation model.
// Its SID ("S1", "S2", ...) is the only legitimate citation target; SIDs
// are assigned in emission order starting at 1.
type Snippet struct {
	// SID is the stable snippet identifier, "S" followed by a positive integer.
	SID string `json:"sid" yaml:"sid"`

	// PMID is the PubMed identifier of the source article.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the source article title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year as it appears in PubMed.
	Year string `json:"year" yaml:"year"`

	// Journal is the source journal title.
	Journal string `json:"journal" yaml:"journal"`

	// Text is the formatted evidence block shown to the model, including
	// the [S#] tag, title line, and truncated abstract.
	Text string `json:"text" yaml:"text"`

	// URL links back to the source article.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Article holds one parsed PubMed record.
type Article struct {
	// PMID is the PubMed identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Abstract joins all abstract parts; labeled parts keep their label prefix.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Journal is the journal title.
	Journal string `json:"journal" yaml:"journal"`

	// Year is the publication year, or the MEDLINE date string when no
	// structured year is present.
	Year string `json:"year" yaml:"year"`

	// Authors lists author display names in source order (capped).
	Authors []string `json:"authors" yaml:"authors"`

	// DOI is the article DOI if one was listed.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PubTypes lists PubMed publication types (capped).
	PubTypes []string `json:"pub_types,omitempty" yaml:"pub_types,omitempty"`
}

// EvidencePack bundles the PubMed retrieval output for one disease+drug query.
type EvidencePack struct {
	// Disease is the disease term used in the query.
	Disease string `json:"disease" yaml:"disease"`

	// Drug is the drug name used in the query.
	Drug string `json:"drug" yaml:"drug"`

	// ChEMBLID is the resolved molecule identifier, if resolution succeeded.
	ChEMBLID string `json:"chembl_id,omitempty" yaml:"chembl_id,omitempty"`

	// Query is the literal E-utilities search term.
	Query string `json:"query" yaml:"query"`

	// Sort is the esearch sort order used ("relevance" or "date").
	Sort string `json:"sort" yaml:"sort"`

	// PMIDs lists the identifiers returned by esearch, in rank order.
	PMIDs []string `json:"pmids" yaml:"pmids"`

	// Articles holds the parsed records with non-empty abstracts.
	Articles []Article `json:"articles" yaml:"articles"`

	// GeneratedAt records when the pack was built (RFC 3339).
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
}

// MoleculeProfile carries ChEMBL context used to ground the biological
// rationale section of the report.
type MoleculeProfile struct {
	// ChEMBLID is the molecule identifier (e.g. "CHEMBL25").
	ChEMBLID string `json:"chembl_id" yaml:"chembl_id"`

	// PreferredName is ChEMBL's preferred molecule name.
	PreferredName string `json:"preferred_name" yaml:"preferred_name"`

	// MatchReason explains how the input name was matched to the molecule.
	MatchReason string `json:"match_reason" yaml:"match_reason"`

	// TopTargets lists the highest-confidence target names for the molecule.
	TopTargets []string `json:"top_targets,omitempty" yaml:"top_targets,omitempty"`
}
