// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate builds the grounded-report prompt and produces the
// baseline report through a chat-completion backend.
package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// citationRules is the anti-hallucination preamble. Bracket citations
// [S#] are the only permitted source references.
const citationRules = `You are a biomedical research evidence assistant.

You MUST follow these rules:
1) Use ONLY the provided evidence snippets [S1], [S2], ... as sources.
2) Every factual claim MUST include at least one citation like [S3].
3) If evidence is missing or weak, explicitly say "Insufficient evidence in the provided snippets" and do NOT guess.
4) Do NOT provide medical advice. Do NOT claim a treatment works. This is research support only.
5) Distinguish clearly between:
   - what is directly supported by snippets
   - what is a hypothesis (label as "Hypothesis")
6) Include an "Uncertainty & Limitations" section that mentions:
   - evidence quality may vary (reviews vs experiments)
   - abstracts are incomplete summaries
7) Use ONLY bracket citations in the form [S#]. Do NOT cite anything else.`

// reportTemplate fixes the section layout. The Evidence Summary heading is
// what section-scoped validation keys on.
const reportTemplate = `Return a structured report with these exact sections:

1) Question
- Restate the user's disease+molecule query in 1 sentence.

2) Evidence Summary (with citations)
- 4-8 bullet points summarizing what the snippets say about the molecule and disease.
- Each bullet MUST end with citations like [S2][S5].

3) Biological Rationale (with citations)
- Explain plausible biological mechanisms mentioned in the snippets.
- If you infer beyond the text, label it as Hypothesis and still cite supporting snippets.

4) Contradictions / Gaps (with citations if applicable)
- Note disagreements, missing info, or why evidence may not be strong.

5) Uncertainty & Limitations
- Include the required limitations.

6) Safety Note
- One short paragraph: not medical advice, not a validated therapeutic recommendation.`

// promptTmpl assembles the full generation prompt.
var promptTmpl = template.Must(template.New("report").Parse(`{{.Rules}}

{{.Template}}

{{if .MolProfile}}{{.MolProfile}}{{end}}EVIDENCE SNIPPETS:
{{.Evidence}}

USER QUESTION: Write the research report for {{.Drug}} in {{.Disease}}.
IMPORTANT FORMAT: In Section 2, write bullet points starting with '-' and END each bullet with citations like [S1][S2].`))

// BuildPrompt renders the generation prompt from the evidence snippets and
// optional molecular context.
func BuildPrompt(disease, drug string, snippets []types.Snippet, mol *types.MoleculeProfile) (string, error) {
	var texts []string
	for _, s := range snippets {
		if t := strings.TrimSpace(s.Text); t != "" {
			texts = append(texts, t)
		}
	}
	evidence := strings.Join(texts, "\n\n")
	if evidence == "" {
		evidence = "[No snippets provided]"
	}

	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, struct {
		Rules      string
		Template   string
		MolProfile string
		Evidence   string
		Disease    string
		Drug       string
	}{
		Rules:      citationRules,
		Template:   reportTemplate,
		MolProfile: molProfileBlock(mol),
		Evidence:   evidence,
		Disease:    disease,
		Drug:       drug,
	})
	if err != nil {
		return "", fmt.Errorf("rendering report prompt: %w", err)
	}
	return buf.String(), nil
}

// molProfileBlock formats the optional ChEMBL context. Returns "" when no
// profile is available so the template can omit the block cleanly.
func molProfileBlock(mol *types.MoleculeProfile) string {
	if mol == nil {
		return ""
	}

	id := mol.ChEMBLID
	if id == "" {
		id = "N/A"
	}

	targets := "N/A"
	if len(mol.TopTargets) > 0 {
		capped := mol.TopTargets
		if len(capped) > 3 {
			capped = capped[:3]
		}
		targets = strings.Join(capped, ", ")
	}

	return fmt.Sprintf("MOLECULAR PROFILE:\n- ChEMBL ID: %s\n- Top Targets: %s\n\n", id, targets)
}
