package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/medlens-ai/medlens/internal/core"
)

// probeTimeout bounds the connectivity probe so a dead network fails fast.
const probeTimeout = 5 * time.Second

// GroqClient implements core.ChatModel against Groq's OpenAI-compatible API.
type GroqClient struct {
	client *openai.Client
}

func NewGroqClient(apiKey, baseURL string) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqClient{client: openai.NewClientWithConfig(cfg)}
}

// Complete issues a single-turn chat completion.
func (g *GroqClient) Complete(ctx context.Context, model string, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("groq completion (%s): %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq completion (%s): empty choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}

// Probe hits the provider's model-listing endpoint with a short timeout.
// It consumes no completion quota.
func (g *GroqClient) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := g.client.ListModels(ctx)
	return err == nil
}

var _ core.ChatModel = (*GroqClient)(nil)
