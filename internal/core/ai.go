package core

import "context"

// EmbeddingProvider turns texts into fixed-dimension vectors.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel is the language-model provider collaborator. Complete issues a
// single completion against a concrete model; Probe is a cheap bounded
// connectivity check against the provider's listing endpoint.
type ChatModel interface {
	Complete(ctx context.Context, model string, prompt string, maxTokens int, temperature float32) (string, error)
	Probe(ctx context.Context) bool
}
