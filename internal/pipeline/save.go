// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// now is test-overridable so saved filenames are deterministic.
var now = time.Now

// SaveMarkdownReport writes the result as a Markdown file under outDir and
// returns the file path. The filename encodes drug, disease, and a
// timestamp so repeated runs never collide.
func SaveMarkdownReport(res *types.Result, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	disease := strings.ReplaceAll(res.Metadata.Disease, " ", "_")
	drug := strings.ReplaceAll(res.Metadata.Drug, " ", "_")
	timestamp := now().Format("20060102_150405")

	path := filepath.Join(outDir, fmt.Sprintf("%s__%s__%s.md", drug, disease, timestamp))

	var b strings.Builder
	b.WriteString("# Evidence Engine Research Report\n\n")
	fmt.Fprintf(&b, "**Drug:** %s\n\n", drug)
	fmt.Fprintf(&b, "**Disease:** %s\n\n", disease)
	fmt.Fprintf(&b, "**Trust Score:** %v%%\n\n", res.TrustScore)
	b.WriteString("---\n\n")
	b.WriteString(res.Report)
	b.WriteString("\n\n---\n\n")
	b.WriteString("## Sources\n\n")
	for _, s := range res.Sources {
		if s.PMID == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s - https://pubmed.ncbi.nlm.nih.gov/%s/\n", s.SID, s.Title, s.PMID)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}
	return path, nil
}
