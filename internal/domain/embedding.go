package domain

import "context"

// EmbeddingResult holds a dense vector and the token usage that produced it.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder converts text into a fixed-length dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}
