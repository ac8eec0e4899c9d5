// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func snips(n int) []types.Snippet {
	out := make([]types.Snippet, n)
	for i := range out {
		out[i] = types.Snippet{SID: fmt.Sprintf("S%d", i+1), Text: fmt.Sprintf("snippet %d", i+1)}
	}
	return out
}

func TestMaxSID(t *testing.T) {
	tests := []struct {
		name string
		sids []string
		want int
	}{
		{"sequential", []string{"S1", "S2", "S3"}, 3},
		{"unordered", []string{"S7", "S2"}, 7},
		{"lowercase tolerated", []string{"s4"}, 4},
		{"whitespace tolerated", []string{" S5 "}, 5},
		{"malformed skipped", []string{"S1", "SX", "5", ""}, 1},
		{"all malformed", []string{"nope", "S"}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var snippets []types.Snippet
			for _, sid := range tt.sids {
				snippets = append(snippets, types.Snippet{SID: sid})
			}
			assert.Equal(t, tt.want, MaxSID(snippets))
		})
	}
}

func TestValidateFullCoverage(t *testing.T) {
	text := "- a [S1]\n- b [S2]\n- c [S1][S2]"

	v := Validate(text, snips(2))

	assert.Equal(t, 3, v.NBullets)
	assert.Equal(t, 0, v.NMissingCitations)
	assert.Equal(t, 100.0, v.CoveragePct)
	assert.Empty(t, v.BadReferenceNums)
	assert.Empty(t, v.MissingExamples)
	assert.True(t, v.Passes(90))
}

func TestValidatePartialCoverage(t *testing.T) {
	text := "- a [S1]\n- b\n- c [S2]"

	v := Validate(text, snips(2))

	assert.Equal(t, 3, v.NBullets)
	assert.Equal(t, 1, v.NMissingCitations)
	assert.Equal(t, 66.67, v.CoveragePct)
	assert.Equal(t, []string{"- b"}, v.MissingExamples)
	assert.False(t, v.Passes(90))
}

func TestValidateBareSIDDoesNotCount(t *testing.T) {
	// "S3" outside brackets is prose, not a citation.
	v := Validate("- claim S3", snips(3))

	assert.Equal(t, 1, v.NMissingCitations)
	assert.Equal(t, 0.0, v.CoveragePct)
}

func TestValidateBadReferences(t *testing.T) {
	text := "- a [S1]\n- b [S5]\n- c [S5][S9]"

	v := Validate(text, snips(3))

	assert.Equal(t, 0, v.NMissingCitations)
	assert.Equal(t, 100.0, v.CoveragePct)
	assert.Equal(t, []int{5, 9}, v.BadReferenceNums)
	assert.False(t, v.Passes(90), "bad references must fail the gate regardless of coverage")
}

func TestValidateNoBullets(t *testing.T) {
	v := Validate("just prose, no claims", snips(2))

	assert.Equal(t, 0, v.NBullets)
	assert.Equal(t, 0.0, v.CoveragePct)
	assert.False(t, v.Passes(90))
}

func TestValidateEmptySnippetsSkipsBadRefScan(t *testing.T) {
	// With no snippets maxSID is 0, so there is no range to check against.
	v := Validate("- a [S1]\n- b", nil)

	assert.Equal(t, 2, v.NBullets)
	assert.Equal(t, 1, v.NMissingCitations)
	assert.Empty(t, v.BadReferenceNums)
}

func TestValidateMissingExamplesCapped(t *testing.T) {
	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, fmt.Sprintf("- uncited claim %d", i))
	}

	v := Validate(strings.Join(lines, "\n"), snips(1))

	assert.Equal(t, 8, v.NMissingCitations)
	assert.Len(t, v.MissingExamples, types.MaxMissingExamples)
	assert.Equal(t, "- uncited claim 0", v.MissingExamples[0])
}

func TestValidateCoverageRounding(t *testing.T) {
	// 2 of 3 cited: 66.666... rounds to 66.67; 1 of 3: 33.33.
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"two thirds", "- a [S1]\n- b [S1]\n- c", 66.67},
		{"one third", "- a [S1]\n- b\n- c", 33.33},
		{"one sixth", "- a [S1]\n- b\n- c\n- d\n- e\n- f", 16.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.text, snips(1))
			assert.Equal(t, tt.want, v.CoveragePct)
			assert.GreaterOrEqual(t, v.CoveragePct, 0.0)
			assert.LessOrEqual(t, v.CoveragePct, 100.0)
		})
	}
}

func TestValidateBullets(t *testing.T) {
	bullets := []string{"- a [S1]", "", "  ", "- b"}

	v := ValidateBullets(bullets, snips(2))

	assert.Equal(t, 2, v.NBullets, "blank entries are dropped")
	assert.Equal(t, 1, v.NMissingCitations)
	assert.Equal(t, 50.0, v.CoveragePct)
}

func TestValidateBulletsEmptySnippets(t *testing.T) {
	v := ValidateBullets([]string{"- a [S1]", "- b"}, nil)

	assert.Equal(t, 2, v.NBullets)
	assert.Equal(t, 2, v.NMissingCitations, "without evidence every bullet counts as missing")
	assert.Equal(t, 0.0, v.CoveragePct)
	assert.Empty(t, v.BadReferenceNums)
}

func TestPasses(t *testing.T) {
	tests := []struct {
		name string
		v    types.ValidationResult
		want bool
	}{
		{"above target", types.ValidationResult{CoveragePct: 95}, true},
		{"exactly target", types.ValidationResult{CoveragePct: 90}, true},
		{"below target", types.ValidationResult{CoveragePct: 89.99}, false},
		{"bad refs block", types.ValidationResult{CoveragePct: 100, BadReferenceNums: []int{9}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Passes(90))
		})
	}
}
