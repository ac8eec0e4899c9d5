// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"fmt"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// abstractCharLimit bounds snippet abstracts so a handful of snippets fit
// the generation context window.
const abstractCharLimit = 900

// MakeSnippets converts the pack's articles into citable snippets. SIDs
// are assigned in emission order starting at S1, so the highest SID bounds
// the valid citation range.
func MakeSnippets(pack *types.EvidencePack, maxSnippets int) []types.Snippet {
	if maxSnippets <= 0 {
		maxSnippets = defaultMaxSnippets
	}

	articles := pack.Articles
	if len(articles) > maxSnippets {
		articles = articles[:maxSnippets]
	}

	snippets := make([]types.Snippet, 0, len(articles))
	for i, a := range articles {
		sid := fmt.Sprintf("S%d", i+1)

		abstract := strings.ReplaceAll(strings.TrimSpace(a.Abstract), "\n", " ")
		abstract = truncateAtWord(abstract, abstractCharLimit)

		text := fmt.Sprintf("[%s] Title: %s\nYear: %s | Journal: %s | PMID: %s\nAbstract: %s",
			sid, a.Title, a.Year, a.Journal, a.PMID, abstract)

		url := ""
		if a.PMID != "" {
			url = "https://pubmed.ncbi.nlm.nih.gov/" + a.PMID + "/"
		}

		snippets = append(snippets, types.Snippet{
			SID:     sid,
			PMID:    a.PMID,
			Title:   a.Title,
			Year:    a.Year,
			Journal: a.Journal,
			Text:    text,
			URL:     url,
		})
	}
	return snippets
}

// truncateAtWord cuts text to at most limit characters, backing up to the
// last space so words stay whole, and marks the cut with an ellipsis.
func truncateAtWord(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
