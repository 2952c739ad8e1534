package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/maltehb/capr/internal/forecast"
)

// OpenAI is the chat-completions advisor. Structured output is enforced with
// a strict JSON schema, so the response parses directly into Advice.
type OpenAI struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(apiKey, baseURL, model string, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

func (o *OpenAI) Advise(ctx context.Context, bundle forecast.Bundle) (*Advice, error) {
	systemPrompt := buildSystemPrompt(bundle)
	userPrompt := buildUserPrompt(bundle)

	o.logger.Debug("requesting advice",
		"model", o.model,
		"scenarios", len(bundle.Scenarios),
		"target", bundle.Target,
		"system_prompt_len", len(systemPrompt),
	)

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "forecast_advice",
					Description: openai.String("Advisory review of a staffing capacity forecast"),
					Schema:      adviceSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	elapsed := time.Since(start)

	if err != nil {
		o.logger.Error("advice request failed", "error", err, "elapsed", elapsed)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("advice request timed out after %s", elapsed.Truncate(time.Second))
		}
		return nil, fmt.Errorf("requesting advice: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty advice response")
	}

	content := resp.Choices[0].Message.Content
	o.logger.Debug("advice response", "elapsed", elapsed, "content_len", len(content))

	var advice Advice
	if err := json.Unmarshal([]byte(content), &advice); err != nil {
		o.logger.Error("failed to parse advice", "error", err, "raw", truncateStr(content, 2000))
		return nil, fmt.Errorf("parsing advice: %w", err)
	}

	o.logger.Debug("parsed advice",
		"risks", len(advice.Risks),
		"recommendations", len(advice.Recommendations),
		"clarification", advice.Clarification,
	)
	return &advice, nil
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
