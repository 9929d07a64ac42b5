package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/metrics"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/retry"
)

// Extractor is a schema-constrained extraction provider over the OpenAI
// chat completions API with structured outputs.
type Extractor struct {
	client      *openai.Client
	model       string
	temperature float32
	retry       retry.Policy
	logger      *zap.Logger
}

// ExtractorConfig holds the extraction provider settings.
type ExtractorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Retry       retry.Policy
	Logger      *zap.Logger
}

// NewExtractor creates an OpenAI structured extraction provider.
func NewExtractor(cfg *ExtractorConfig) *Extractor {
	return &Extractor{
		client:      newClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retry:       cfg.Retry,
		logger:      cfg.Logger,
	}
}

// Extract implements domain.Extractor. Any failure, whether transport error, refusal,
// or a response that does not unmarshal into out, is retried per the policy;
// after exhaustion the final error propagates wrapped with
// domain.ErrExtractionProviderError.
func (e *Extractor) Extract(ctx context.Context, req domain.ExtractionRequest, out any) error {
	ccReq := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: e.temperature, // low temperature for more deterministic output
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Name,
				Schema: req.Schema,
				Strict: true,
			},
		},
	}

	err := e.retry.Do(ctx, func(ctx context.Context) error {
		start := time.Now()

		resp, callErr := e.client.CreateChatCompletion(ctx, ccReq)
		if callErr != nil {
			metrics.ExtractionRequestsTotal.WithLabelValues(e.model, req.Name, "error").Inc()
			return parseAPIError(callErr, "extraction", domain.ErrExtractionProviderError)
		}

		if parseErr := parseStructured(&resp, out); parseErr != nil {
			metrics.ExtractionRequestsTotal.WithLabelValues(e.model, req.Name, "error").Inc()
			return parseErr
		}

		metrics.ExtractionRequestsTotal.WithLabelValues(e.model, req.Name, "success").Inc()
		metrics.ExtractionRequestDuration.WithLabelValues(e.model, req.Name).Observe(time.Since(start).Seconds())

		if resp.Usage.TotalTokens > 0 {
			metrics.TokensTotal.WithLabelValues(e.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.TokensTotal.WithLabelValues(e.model, "completion").Add(float64(resp.Usage.CompletionTokens))
			metrics.TokensTotal.WithLabelValues(e.model, "total").Add(float64(resp.Usage.TotalTokens))
		}
		return nil
	})
	if err != nil {
		e.logger.Warn("extraction failed after retries",
			zap.String("schema", req.Name),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// parseStructured validates the completion and unmarshals its content into out.
// A refusal or schema-violating body is treated the same as a transport failure.
func parseStructured(resp *openai.ChatCompletionResponse, out any) error {
	if len(resp.Choices) == 0 {
		return fmt.Errorf("empty completion response: %w", domain.ErrExtractionProviderError)
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return fmt.Errorf("model refused: %s: %w", msg.Refusal, domain.ErrExtractionProviderError)
	}
	if msg.Content == "" {
		return fmt.Errorf("empty completion content: %w", domain.ErrExtractionProviderError)
	}

	if err := json.Unmarshal([]byte(msg.Content), out); err != nil {
		return fmt.Errorf("structured output did not match schema: %v: %w",
			err, domain.ErrExtractionProviderError)
	}
	return nil
}
