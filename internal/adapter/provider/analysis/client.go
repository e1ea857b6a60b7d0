// Package analysis is the client of the external analysis service.
// Audio is transcribed with OpenAI Whisper; structuring, deep analysis and
// weekly summaries are produced by Claude and returned as JSON.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"

	"github.com/heartmarshall/dreamjournal/internal/config"
	"github.com/heartmarshall/dreamjournal/internal/metrics"
)

// Client calls the transcription and language models.
type Client struct {
	log     *slog.Logger
	claude  anthropic.Client
	whisper *openai.Client
	cfg     config.AnalysisConfig
}

// NewClient builds a Client from configuration. Empty base URLs select the
// public endpoints.
func NewClient(logger *slog.Logger, cfg config.AnalysisConfig) *Client {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.AnthropicBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.AnthropicBaseURL))
	}

	oaCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	oaCfg.HTTPClient = httpClient
	if cfg.OpenAIBaseURL != "" {
		oaCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &Client{
		log:     logger.With("adapter", "analysis"),
		claude:  anthropic.NewClient(opts...),
		whisper: openai.NewClientWithConfig(oaCfg),
		cfg:     cfg,
	}
}

// complete sends one prompt to Claude and decodes the JSON object in the reply into out.
func (c *Client) complete(ctx context.Context, call, model, system, prompt string, out any) error {
	start := time.Now()
	msg, err := c.claude.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: c.cfg.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	metrics.AnalysisDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		return classify(call, err)
	}

	if len(msg.Content) == 0 {
		return permanent(call, fmt.Errorf("empty response"))
	}

	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}

	raw, err := extractJSON(text.String())
	if err != nil {
		return permanent(call, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return permanent(call, fmt.Errorf("decode response: %w", err))
	}

	c.log.DebugContext(ctx, "analysis call done",
		slog.String("call", call),
		slog.String("model", model),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
