// Package llm builds chat agents for the configured LLM provider.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resource2code/model"
)

var ErrProviderNotConfigured = errors.New("no LLM provider configured")

// Agent answers a single prompt. Implementations strip <think> blocks from
// the completion before returning it.
type Agent interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ProviderName string

const (
	ProviderOpenAI    ProviderName = "OpenAI"
	ProviderOllama    ProviderName = "Ollama"
	ProviderAnthropic ProviderName = "Anthropic"
)

// Provider is the JSON document stored under the current_llm_provider key.
type Provider struct {
	Name      ProviderName `json:"name"`
	BaseURL   string       `json:"baseUrl"`
	APIKey    string       `json:"apiKey"`
	Model     string       `json:"model"`
	MaxTokens *int         `json:"maxTokens,omitempty"`
}

func (p Provider) maxTokens(fallback int) int {
	if p.MaxTokens != nil && *p.MaxTokens > 0 {
		return *p.MaxTokens
	}
	return fallback
}

// ConfigReader is satisfied by the storage repository.
type ConfigReader interface {
	GetConfig(ctx context.Context, key string) (string, bool, error)
}

// Builder creates an agent with the given system preamble.
type Builder interface {
	Build(ctx context.Context, preamble string) (Agent, error)
}

type BuilderFunc func(ctx context.Context, preamble string) (Agent, error)

func (f BuilderFunc) Build(ctx context.Context, preamble string) (Agent, error) {
	return f(ctx, preamble)
}

// ConfigBuilder reads the provider from system configuration on every Build
// so that provider changes apply to the next task without a restart.
type ConfigBuilder struct {
	Config ConfigReader
	Logger *zap.Logger
}

func NewConfigBuilder(cfg ConfigReader, logger *zap.Logger) *ConfigBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigBuilder{Config: cfg, Logger: logger.Named("llm")}
}

func (b *ConfigBuilder) Build(ctx context.Context, preamble string) (Agent, error) {
	provider, err := LoadProvider(ctx, b.Config)
	if err != nil {
		return nil, err
	}
	return New(provider, preamble, b.Logger)
}

// LoadProvider decodes the provider stored in system configuration.
func LoadProvider(ctx context.Context, cfg ConfigReader) (Provider, error) {
	if cfg == nil {
		return Provider{}, ErrProviderNotConfigured
	}
	raw, found, err := cfg.GetConfig(ctx, model.ConfigLLMProvider)
	if err != nil {
		return Provider{}, fmt.Errorf("load llm provider: %w", err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return Provider{}, ErrProviderNotConfigured
	}
	var provider Provider
	if err := json.Unmarshal([]byte(raw), &provider); err != nil {
		return Provider{}, fmt.Errorf("decode llm provider: %w", err)
	}
	return provider, nil
}

// New builds an agent for provider.
func New(provider Provider, preamble string, logger *zap.Logger) (Agent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider.Model == "" {
		return nil, fmt.Errorf("llm provider %s: model is required", provider.Name)
	}
	switch provider.Name {
	case ProviderOpenAI:
		return newOpenAIAgent(provider.BaseURL, provider, preamble, logger), nil
	case ProviderOllama:
		if provider.BaseURL == "" {
			return nil, errors.New("ollama provider requires baseUrl")
		}
		return newOpenAIAgent(ollamaEndpoint(provider.BaseURL), provider, preamble, logger), nil
	case ProviderAnthropic:
		return newAnthropicAgent(provider, preamble, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider.Name)
	}
}

func ollamaEndpoint(baseURL string) string {
	base := strings.TrimSuffix(baseURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}
