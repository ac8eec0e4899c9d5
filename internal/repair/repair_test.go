// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// mockBackend replays scripted responses and records every request.
type mockBackend struct {
	responses []string
	err       error
	requests  []Request
}

func (m *mockBackend) Repair(_ context.Context, req Request) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	i := len(m.requests) - 1
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

func snips(n int) []types.Snippet {
	out := make([]types.Snippet, n)
	for i := range out {
		out[i] = types.Snippet{SID: fmt.Sprintf("S%d", i+1), Text: fmt.Sprintf("snippet text %d", i+1)}
	}
	return out
}

func TestRunBaselinePassSkipsBackend(t *testing.T) {
	backend := &mockBackend{}
	text := "## 2) Evidence Summary\n- a [S1]\n- b [S2]\n## 3) Biological Rationale\n- c [S1]"

	out, err := Run(context.Background(), text, snips(2), backend, Options{}, io.Discard)

	require.NoError(t, err)
	assert.Empty(t, backend.requests, "passing baseline must not invoke the backend")
	assert.False(t, out.AgenticUsed)
	assert.Equal(t, 0, out.Attempts)
	assert.Equal(t, text, out.Report)
	assert.Equal(t, 100.0, out.Overall.CoveragePct)
	assert.Equal(t, 2, out.Section.NBullets)
}

func TestRunEmptySnippetsSkipsBackend(t *testing.T) {
	backend := &mockBackend{}
	text := "- a [S1]\n- b"

	out, err := Run(context.Background(), text, nil, backend, Options{}, io.Discard)

	require.NoError(t, err)
	assert.Empty(t, backend.requests)
	assert.False(t, out.AgenticUsed)
	assert.Equal(t, text, out.Report)
	assert.Equal(t, 2, out.Overall.NBullets)
	assert.Equal(t, 2, out.Overall.NMissingCitations)
	assert.Equal(t, 0.0, out.Overall.CoveragePct)
}

func TestRunConvergesInOneAttempt(t *testing.T) {
	backend := &mockBackend{responses: []string{"1) fixed claim [S1]\n2) other claim [S2]"}}
	text := "intro\n- cited claim [S1]\n- bare one\n- bare two"

	out, err := Run(context.Background(), text, snips(2), backend, Options{}, io.Discard)

	require.NoError(t, err)
	require.Len(t, backend.requests, 1)
	assert.True(t, out.AgenticUsed)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 100.0, out.Overall.CoveragePct)
	assert.Empty(t, out.Overall.BadReferenceNums)
	require.Len(t, out.Log, 1)
	assert.Equal(t, 1, out.Log[0].Attempt)
	assert.Equal(t, 2, out.Log[0].BulletsRepaired)

	// Request carried the claims marker-stripped, in report order.
	req := backend.requests[0]
	assert.Equal(t, []string{"bare one", "bare two"}, req.Bullets)
	assert.Equal(t, 2, req.MaxSID)
	assert.Equal(t, 2, req.Count)
	assert.Contains(t, req.EvidenceText, "snippet text 1")
}

func TestRunPatchesOnlyTargetLines(t *testing.T) {
	backend := &mockBackend{responses: []string{"1) now cited [S1]"}}
	text := "header line\n- cited [S2]\nprose stays\n- uncited\ntrailing line"

	out, err := Run(context.Background(), text, snips(2), backend, Options{}, io.Discard)

	require.NoError(t, err)
	lines := strings.Split(out.Report, "\n")
	assert.Equal(t, "header line", lines[0])
	assert.Equal(t, "- cited [S2]", lines[1])
	assert.Equal(t, "prose stays", lines[2])
	assert.Equal(t, "- now cited [S1]", lines[3])
	assert.Equal(t, "trailing line", lines[4])
}

func TestRunExhaustsRetries(t *testing.T) {
	// Backend keeps returning an uncited replacement, so coverage never improves.
	backend := &mockBackend{responses: []string{"1) still no citation"}}
	text := "- cited [S1]\n- stubborn bullet"

	out, err := Run(context.Background(), text, snips(1), backend, Options{MaxRetries: 3}, io.Discard)

	require.NoError(t, err)
	assert.Len(t, backend.requests, 3, "loop must run exactly MaxRetries attempts")
	assert.True(t, out.AgenticUsed)
	assert.Equal(t, 3, out.Attempts)
	assert.Len(t, out.Log, 3)
	assert.Equal(t, 50.0, out.Overall.CoveragePct)
	assert.False(t, out.Overall.Passes(DefaultTargetCoveragePct))
}

func TestRunStopsWhenNoCandidatesRemain(t *testing.T) {
	// First attempt cites every bare bullet but coverage target is
	// unreachable due to a bad reference introduced by the backend. With no
	// uncited bullets left the loop must stop early.
	backend := &mockBackend{responses: []string{"1) claim [S9]"}}
	text := "- cited [S1]\n- bare"

	out, err := Run(context.Background(), text, snips(1), backend, Options{MaxRetries: 3}, io.Discard)

	require.NoError(t, err)
	assert.Len(t, backend.requests, 1, "no uncited bullets remain after the first patch")
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, []int{9}, out.Overall.BadReferenceNums)
	assert.False(t, out.Overall.Passes(DefaultTargetCoveragePct))
}

func TestRunBadReferenceBulletsNotRepaired(t *testing.T) {
	// A bullet citing out of range has a citation token, so it is never a
	// repair candidate even though it fails the gate.
	backend := &mockBackend{responses: []string{"unused"}}
	text := "- claim [S7]"

	out, err := Run(context.Background(), text, snips(2), backend, Options{}, io.Discard)

	require.NoError(t, err)
	assert.Empty(t, backend.requests)
	assert.Equal(t, text, out.Report)
	assert.Equal(t, []int{7}, out.Overall.BadReferenceNums)
}

func TestRunBackendErrorAborts(t *testing.T) {
	backend := &mockBackend{err: fmt.Errorf("endpoint down")}
	text := "- bare bullet"

	_, err := Run(context.Background(), text, snips(1), backend, Options{}, io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "repair attempt 1")
	assert.Contains(t, err.Error(), "endpoint down")
}

func TestRunCountsInsufficientRewrites(t *testing.T) {
	backend := &mockBackend{responses: []string{
		"1) Insufficient evidence in provided snippets. [S1]\n2) supported claim [S1]",
	}}
	text := "- bare one\n- bare two"

	out, err := Run(context.Background(), text, snips(1), backend, Options{}, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, 1, out.RewrittenInsufficient)
}

func TestParseReplacements(t *testing.T) {
	originals := []string{"- first", "- second", "- third"}

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "exact count",
			raw:  "1) alpha [S1]\n2) beta [S2]\n3) gamma [S1]",
			want: []string{"- alpha [S1]", "- beta [S2]", "- gamma [S1]"},
		},
		{
			name: "noise lines discarded",
			raw:  "Here are the bullets:\n1) alpha [S1]\n\n2) beta [S2]\n3) gamma [S1]\nDone.",
			want: []string{"- alpha [S1]", "- beta [S2]", "- gamma [S1]"},
		},
		{
			name: "underfilled output padded with originals",
			raw:  "1) alpha [S1]",
			want: []string{"- alpha [S1]", "- second", "- third"},
		},
		{
			name: "overfilled output truncated",
			raw:  "1) a [S1]\n2) b [S1]\n3) c [S1]\n4) d [S1]",
			want: []string{"- a [S1]", "- b [S1]", "- c [S1]"},
		},
		{
			name: "empty output pads everything",
			raw:  "",
			want: []string{"- first", "- second", "- third"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReplacements(tt.raw, originals)
			require.Len(t, got, len(originals), "replacement count must match")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRepairPrompt(t *testing.T) {
	prompt, err := renderRepairPrompt(Request{
		EvidenceText: "[S1] some evidence",
		Bullets:      []string{"claim one", "claim two"},
		MaxSID:       4,
		Count:        2,
	})

	require.NoError(t, err)
	assert.Contains(t, prompt, "[S1]..[S4]")
	assert.Contains(t, prompt, "exactly 2 bullets")
	assert.Contains(t, prompt, "1) claim one")
	assert.Contains(t, prompt, "2) claim two")
	assert.Contains(t, prompt, "[S1] some evidence")
}
