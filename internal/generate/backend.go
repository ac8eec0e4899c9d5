// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Backend abstracts the chat-completion API so tests can supply a mock.
// Each implementation handles one rendered prompt and returns the raw
// report text.
type Backend interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// defaultGenerateMaxTokens bounds report output when the config leaves
// MaxTokens unset.
const defaultGenerateMaxTokens = 900

// LMStudioBackend generates reports through an OpenAI-compatible chat
// endpoint such as LM Studio.
type LMStudioBackend struct {
	client *openai.Client
	model  string
}

// NewLMStudioBackend builds a backend for the endpoint described by cfg.
func NewLMStudioBackend(cfg types.AIConfig) *LMStudioBackend {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &LMStudioBackend{
		client: openai.NewClientWithConfig(cc),
		model:  cfg.Model,
	}
}

// Generate sends the prompt as a single user message at temperature 0 and
// returns the completion text.
func (b *LMStudioBackend) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultGenerateMaxTokens
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		MaxTokens:   maxTokens,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling generation endpoint: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation endpoint returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
