package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const defaultAnthropicMaxTokens = 4096

type anthropicAgent struct {
	client    *anthropic.Client
	model     string
	preamble  string
	maxTokens int
	logger    *zap.Logger
}

func newAnthropicAgent(provider Provider, preamble string, logger *zap.Logger) *anthropicAgent {
	var opts []anthropic.ClientOption
	if provider.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(provider.BaseURL, "/")))
	}
	return &anthropicAgent{
		client:    anthropic.NewClient(provider.APIKey, opts...),
		model:     provider.Model,
		preamble:  preamble,
		maxTokens: provider.maxTokens(defaultAnthropicMaxTokens),
		logger:    logger.With(zap.String("provider", string(provider.Name)), zap.String("model", provider.Model)),
	}
}

func (a *anthropicAgent) Generate(ctx context.Context, prompt string) (string, error) {
	a.logger.Debug("LLM request", zap.Int("prompt_len", len(prompt)))
	start := time.Now()
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    a.preamble,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		a.logger.Error("LLM request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", fmt.Errorf("create message: %w", err)
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			b.WriteString(*block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text content in response")
	}
	a.logger.Info("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))
	return RemoveThinkTags(b.String()), nil
}
