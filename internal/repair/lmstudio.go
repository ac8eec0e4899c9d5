// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// repairPromptTmpl is rendered per batch of uncited bullets. It constrains
// the model to the supplied citation range, forbids new factual claims,
// and demands an exact-count numbered list so the output parser can
// enforce the replacement contract.
var repairPromptTmpl = template.Must(template.New("repair").Parse(`You are repairing ONLY bullet points that are missing citations in a grounded biomedical report.

CONSTRAINTS:
- Use ONLY citations [S1]..[S{{.MaxSID}}] from the provided snippets.
- Do NOT introduce any new factual claims.
- Keep each bullet's meaning if it is supported by snippets, and add best citation(s) at the end.
- If not supported, replace the bullet with: "Insufficient evidence in provided snippets." + ONE citation.
- Output exactly {{.Count}} bullets, numbered 1)..{{.Count}}), one per line.
- Output ONLY the numbered bullets (no extra text).

EVIDENCE SNIPPETS:
{{.Evidence}}

BULLETS TO FIX:
{{.Bullets}}`))

// defaultRepairMaxTokens bounds replacement output when the config leaves
// MaxTokens unset.
const defaultRepairMaxTokens = 350

// LMStudioBackend repairs bullets through an OpenAI-compatible chat
// endpoint such as LM Studio. Requests are deterministic (temperature 0)
// and blocking; per-call timeouts belong to the injected context or the
// client configuration.
type LMStudioBackend struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewLMStudioBackend builds a backend for the endpoint described by cfg.
func NewLMStudioBackend(cfg types.AIConfig) *LMStudioBackend {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultRepairMaxTokens
	}
	return &LMStudioBackend{
		client:    openai.NewClientWithConfig(cc),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Repair renders the repair prompt and returns the raw model output.
func (b *LMStudioBackend) Repair(ctx context.Context, req Request) (string, error) {
	prompt, err := renderRepairPrompt(req)
	if err != nil {
		return "", fmt.Errorf("rendering repair prompt: %w", err)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		MaxTokens:   b.maxTokens,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling repair endpoint: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("repair endpoint returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// renderRepairPrompt formats the request's bullets as a numbered block and
// executes the prompt template.
func renderRepairPrompt(req Request) (string, error) {
	var bullets bytes.Buffer
	for i, claim := range req.Bullets {
		fmt.Fprintf(&bullets, "%d) %s\n", i+1, claim)
	}

	var buf bytes.Buffer
	err := repairPromptTmpl.Execute(&buf, struct {
		MaxSID   int
		Count    int
		Evidence string
		Bullets  string
	}{
		MaxSID:   req.MaxSID,
		Count:    req.Count,
		Evidence: req.EvidenceText,
		Bullets:  bullets.String(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
