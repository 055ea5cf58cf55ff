// AngelaMos | 2026
// estimator.go

package nutrition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nutriai/backend/internal/config"
	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/metrics"
)

const systemPrompt = `You are a nutrition assistant. Reply with ONLY a valid JSON object:
{
  "calories": number,
  "proteins": number,
  "carbs": number,
  "fats": number,
  "fiber": number,
  "suggestions": ["suggestion 1", "suggestion 2"]
}`

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Estimate struct {
	Facts Facts
	Usage Usage
	Model string
}

type Estimator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	configured  bool
	logger      *slog.Logger
}

func NewEstimator(cfg config.OpenRouterConfig, logger *slog.Logger) *Estimator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Estimator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		configured:  cfg.APIKey != "",
		logger:      logger,
	}
}

// Estimate asks the model for the nutrition facts of description. Transport
// and HTTP failures map to core.ErrUpstreamUnavailable, unusable replies to
// core.ErrMalformedUpstream. Nothing is retried.
func (e *Estimator) Estimate(
	ctx context.Context,
	description string,
) (*Estimate, error) {
	if !e.configured {
		return nil, core.NotConfiguredError("OPENROUTER_API_KEY")
	}

	ctx, span := core.StartSpan(ctx, "nutrition.estimate",
		attribute.String("llm.model", e.model),
	)
	defer span.End()

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Meal: " + strings.TrimSpace(description),
			},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		metrics.RecordLLMRequest(e.model, "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		e.logger.Warn("completion request failed",
			"model", e.model,
			"status", upstreamStatus(err),
			"error", err,
		)
		return nil, fmt.Errorf("estimate: %v: %w", err, core.ErrUpstreamUnavailable)
	}
	metrics.RecordLLMRequest(e.model, "ok", time.Since(start))

	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, "no choices")
		return nil, fmt.Errorf("estimate: empty choices: %w", core.ErrMalformedUpstream)
	}

	reply := resp.Choices[0].Message.Content
	facts, err := ParseFacts(reply)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable reply")
		e.logger.Warn("unparseable completion",
			"model", e.model,
			"reply_len", len(reply),
			"error", err,
		)
		return nil, err
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}

	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", usage.PromptTokens),
		attribute.Int("llm.completion_tokens", usage.CompletionTokens),
	)

	return &Estimate{
		Facts: *facts,
		Usage: usage,
		Model: e.model,
	}, nil
}

func (e *Estimator) Model() string {
	return e.model
}

func upstreamStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
