// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/cache"
	"github.com/pdiddy/evidence-engine/internal/pipeline"
	"github.com/pdiddy/evidence-engine/internal/repair"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "evidence-engine/0.1"
	defaultBaseURL   = "http://localhost:1234/v1"
	defaultCachePath = ".cache/evidence-engine.db"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Generate a grounded research report for a disease+drug pair",
	Long: `Synthesize resolves the drug against ChEMBL, retrieves PubMed evidence,
generates a structured report through the configured chat endpoint, and
validates that every claim cites an evidence snippet. With --agentic,
uncited claims are repaired through a bounded retry loop before the final
validation. The report is saved as Markdown under --out-dir.`,
	RunE: runSynthesize,
}

func init() {
	synthesizeCmd.Flags().String("disease", "", "disease term (required)")
	synthesizeCmd.Flags().String("drug", "", "drug name (required)")
	synthesizeCmd.Flags().Bool("agentic", false, "repair uncited claims through the agentic loop")
	synthesizeCmd.Flags().Int("max-retries", repair.DefaultMaxRetries, "maximum repair attempts")
	synthesizeCmd.Flags().Float64("target-coverage", repair.DefaultTargetCoveragePct, "citation coverage target in percent")
	synthesizeCmd.Flags().Int("max-papers", 25, "PubMed records requested per query")
	synthesizeCmd.Flags().Int("max-snippets", 10, "evidence snippets built from the retrieved records")
	synthesizeCmd.Flags().String("sort", "relevance", "PubMed sort order: relevance or date")
	synthesizeCmd.Flags().String("model", "", "model identifier for the chat endpoint")
	synthesizeCmd.Flags().String("base-url", defaultBaseURL, "OpenAI-compatible chat endpoint base URL")
	synthesizeCmd.Flags().Int("max-tokens", 0, "completion token limit for generation")
	synthesizeCmd.Flags().String("cache", defaultCachePath, "SQLite retrieval cache path, empty to disable")
	synthesizeCmd.Flags().String("out-dir", "reports", "directory for saved Markdown reports")
	synthesizeCmd.Flags().Bool("json", false, "print the full result as JSON instead of the report text")

	synthesizeCmd.MarkFlagRequired("disease")
	synthesizeCmd.MarkFlagRequired("drug")

	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	disease, _ := cmd.Flags().GetString("disease")
	drug, _ := cmd.Flags().GetString("drug")
	agentic, _ := cmd.Flags().GetBool("agentic")
	outDir, _ := cmd.Flags().GetString("out-dir")
	asJSON, _ := cmd.Flags().GetBool("json")
	cachePath, _ := cmd.Flags().GetString("cache")

	cfg := buildPipelineConfig(cmd)

	var store cache.Cache = cache.Nop{}
	if cachePath != "" {
		db, err := cache.OpenSQLite(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
		} else {
			defer db.Close()
			store = db
		}
	}

	engine := pipeline.NewEngine(cfg, store)
	engine.Progress = os.Stderr

	res, err := engine.Run(cmd.Context(), disease, drug, agentic)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoSnippets) {
			return fmt.Errorf("no PubMed evidence found for %q and %q", disease, drug)
		}
		return err
	}

	path, err := pipeline.SaveMarkdownReport(res, outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved report: %s\n", path)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("\n==== TRUST SCORE ====\n%.2f\n", res.TrustScore)
	fmt.Printf("\n==== REPORT ====\n\n%s\n", res.Report)
	return nil
}

// buildPipelineConfig assembles stage configuration from flags and loaded
// secrets.
func buildPipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	maxSnippets, _ := cmd.Flags().GetInt("max-snippets")
	sortOrder, _ := cmd.Flags().GetString("sort")
	model, _ := cmd.Flags().GetString("model")
	baseURL, _ := cmd.Flags().GetString("base-url")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	targetCoverage, _ := cmd.Flags().GetFloat64("target-coverage")
	outDir, _ := cmd.Flags().GetString("out-dir")
	cachePath, _ := cmd.Flags().GetString("cache")

	ai := types.AIConfig{
		Model:     model,
		BaseURL:   baseURL,
		APIKey:    secretDefault("lmstudio-api-key", ""),
		MaxTokens: maxTokens,
	}

	return types.PipelineConfig{
		Retrieval: types.RetrievalConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   defaultTimeout,
				UserAgent: defaultUserAgent,
			},
			MaxPapers:   maxPapers,
			MaxSnippets: maxSnippets,
			Sort:        sortOrder,
			Tool:        "evidence-engine",
			Email:       secretDefault("ncbi-email", ""),
			APIKey:      secretDefault("ncbi-api-key", ""),
			CachePath:   cachePath,
		},
		Generation: types.GenerationConfig{AIConfig: ai},
		Repair: types.RepairConfig{
			AIConfig:          ai,
			MaxRetries:        maxRetries,
			TargetCoveragePct: targetCoverage,
		},
		OutDir: outDir,
	}
}
