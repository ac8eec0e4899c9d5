// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sectionedReport = `1) Question
- Restate the query.

2) Evidence Summary (with citations)
- evidence one [S1]
- evidence two [S2]

3) Biological Rationale (with citations)
- rationale bullet [S1]
`

func TestEvidenceSummaryBullets(t *testing.T) {
	got := EvidenceSummaryBullets(sectionedReport)
	assert.Equal(t, []string{"- evidence one [S1]", "- evidence two [S2]"}, got)
}

func TestEvidenceSummaryBulletsDecoratedHeadings(t *testing.T) {
	text := "## **2) Evidence Summary**\n- a [S1]\n### 3) Biological Rationale\n- b [S2]\n"
	got := EvidenceSummaryBullets(text)
	assert.Equal(t, []string{"- a [S1]"}, got)
}

func TestEvidenceSummaryBulletsNoHeadingFallsBack(t *testing.T) {
	text := "- one [S1]\nprose\n- two\n"
	got := EvidenceSummaryBullets(text)
	assert.Equal(t, []string{"- one [S1]", "- two"}, got)
}

func TestEvidenceSummaryBulletsEmptySectionFallsBack(t *testing.T) {
	text := "## 2) Evidence Summary\nno bullets here\n## 3) Biological Rationale\n- rationale [S1]\n"
	got := EvidenceSummaryBullets(text)
	assert.Equal(t, []string{"- rationale [S1]"}, got)
}

func TestEvidenceSummaryBulletsNoEndHeading(t *testing.T) {
	text := "2) Evidence Summary\n- a [S1]\n- b [S2]\n"
	got := EvidenceSummaryBullets(text)
	assert.Equal(t, []string{"- a [S1]", "- b [S2]"}, got)
}
