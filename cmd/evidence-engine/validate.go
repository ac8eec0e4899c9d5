// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/report"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report.md>",
	Short: "Check an existing report's citation coverage",
	Long: `Validate reads a Markdown report and a YAML snippet file and reports the
citation coverage: how many bullet claims exist, how many lack citations,
and which cited snippet numbers fall outside the valid range. Metrics are
computed both over the whole document and restricted to the Evidence
Summary section.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("snippets", "", "YAML file with the evidence snippets (required)")
	validateCmd.Flags().Bool("json", false, "output metrics as JSON")

	validateCmd.MarkFlagRequired("snippets")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	snippetsPath, _ := cmd.Flags().GetString("snippets")
	asJSON, _ := cmd.Flags().GetBool("json")

	reportText, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	snippetData, err := os.ReadFile(snippetsPath)
	if err != nil {
		return fmt.Errorf("reading snippets: %w", err)
	}
	var snippets []types.Snippet
	if err := yaml.Unmarshal(snippetData, &snippets); err != nil {
		return fmt.Errorf("parsing snippets: %w", err)
	}

	overall := validate.Validate(string(reportText), snippets)
	section := validate.ValidateBullets(report.EvidenceSummaryBullets(string(reportText)), snippets)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]types.ValidationResult{
			"all":     overall,
			"section": section,
		})
	}

	printMetrics("All bullets", overall)
	printMetrics("Evidence Summary", section)
	return nil
}

func printMetrics(scope string, v types.ValidationResult) {
	fmt.Printf("%s:\n", scope)
	fmt.Printf("  bullets:           %d\n", v.NBullets)
	fmt.Printf("  missing citations: %d\n", v.NMissingCitations)
	fmt.Printf("  coverage:          %.2f%%\n", v.CoveragePct)
	if len(v.BadReferenceNums) > 0 {
		fmt.Printf("  bad references:    %v\n", v.BadReferenceNums)
	}
	for _, ex := range v.MissingExamples {
		fmt.Printf("  missing: %s\n", ex)
	}
}
