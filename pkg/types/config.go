// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrievalConfig holds settings for the evidence retrieval stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPapers is the number of PubMed records requested per query (default 25).
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// MaxSnippets caps how many snippets are built from the pack (default 10).
	MaxSnippets int `json:"max_snippets" yaml:"max_snippets"`

	// Sort is the esearch sort order: "relevance" (default) or "date".
	Sort string `json:"sort" yaml:"sort"`

	// Tool identifies this client to NCBI E-utilities.
	Tool string `json:"tool" yaml:"tool"`

	// Email is sent with E-utilities requests per NCBI etiquette.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CachePath is the SQLite file backing the retrieval response cache.
	// Empty disables caching.
	CachePath string `json:"cache_path" yaml:"cache_path"`
}

// AIConfig holds shared settings for stages that call a chat-completion API.
type AIConfig struct {
	// Model is the model identifier as known to the serving endpoint.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the OpenAI-compatible endpoint base
	// (e.g. "http://localhost:1234/v1" for LM Studio).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the authentication key. Local endpoints accept any value.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the completion length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// GenerationConfig holds settings for baseline report generation.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`
}

// RepairConfig holds settings for the citation repair loop.
type RepairConfig struct {
	AIConfig `yaml:",inline"`

	// MaxRetries bounds the number of repair attempts (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// TargetCoveragePct is the coverage threshold that, together with an
	// empty bad-reference set, ends the loop (default 90).
	TargetCoveragePct float64 `json:"target_coverage_pct" yaml:"target_coverage_pct"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Repair     RepairConfig     `json:"repair" yaml:"repair"`

	// OutDir is the directory for saved Markdown reports.
	OutDir string `json:"out_dir" yaml:"out_dir"`
}
