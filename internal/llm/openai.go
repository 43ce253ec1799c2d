package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type openAIAgent struct {
	client    *openai.Client
	model     string
	preamble  string
	maxTokens int
	logger    *zap.Logger
}

func newOpenAIAgent(endpoint string, provider Provider, preamble string, logger *zap.Logger) *openAIAgent {
	cfg := openai.DefaultConfig(provider.APIKey)
	if endpoint != "" {
		cfg.BaseURL = strings.TrimSuffix(endpoint, "/")
	}
	return &openAIAgent{
		client:    openai.NewClientWithConfig(cfg),
		model:     provider.Model,
		preamble:  preamble,
		maxTokens: provider.maxTokens(0),
		logger:    logger.With(zap.String("provider", string(provider.Name)), zap.String("model", provider.Model)),
	}
}

func (a *openAIAgent) Generate(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if a.preamble != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: a.preamble})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	a.logger.Debug("LLM request", zap.Int("prompt_len", len(prompt)))
	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		Messages:  messages,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		a.logger.Error("LLM request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	a.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))
	return RemoveThinkTags(resp.Choices[0].Message.Content), nil
}
