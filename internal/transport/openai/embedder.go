package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/metrics"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/retry"
)

// Embedder is an embedding provider using the OpenAI API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	retry      retry.Policy
	logger     *zap.Logger
}

// EmbedderConfig holds the embedding provider settings.
type EmbedderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Retry      retry.Policy
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI embedding provider.
func NewEmbedder(cfg *EmbedderConfig) *Embedder {
	return &Embedder{
		client:     newClient(cfg.APIKey, cfg.BaseURL),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		retry:      cfg.Retry,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder. The call is retried per the policy; the
// caller only sees final success or final failure.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	var resp openai.EmbeddingResponse
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		start := time.Now()

		r, callErr := e.client.CreateEmbeddings(ctx, req)
		if callErr != nil {
			metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
			return parseAPIError(callErr, "embedding", domain.ErrEmbeddingProviderError)
		}
		if len(r.Data) == 0 {
			metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
			return fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
		}

		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "success").Inc()
		metrics.EmbeddingRequestDuration.WithLabelValues(string(e.model)).Observe(time.Since(start).Seconds())

		resp = r
		return nil
	})
	if err != nil {
		e.logger.Warn("embedding failed after retries", zap.Error(err))
		return domain.EmbeddingResult{}, err
	}

	if resp.Usage.TotalTokens > 0 {
		metrics.TokensTotal.WithLabelValues(string(e.model), "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.TokensTotal.WithLabelValues(string(e.model), "total").Add(float64(resp.Usage.TotalTokens))
	}

	if e.dimensions > 0 && len(resp.Data[0].Embedding) != e.dimensions {
		return domain.EmbeddingResult{}, fmt.Errorf(
			"embedding dimension mismatch: got %d, want %d: %w",
			len(resp.Data[0].Embedding), e.dimensions, domain.ErrEmbeddingProviderError,
		)
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}
