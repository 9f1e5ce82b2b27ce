package llm

import (
	"context"
	"fmt"
	"time"

	"candidate-search/internal/domain"
	"candidate-search/internal/llm/anthropic"
	"candidate-search/internal/llm/openai"
)

// Config selects and configures the text-generation backend.
type Config struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKeyEnv   string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// New builds a Generator for the configured provider.
func New(cfg Config) (domain.Generator, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.BaseURL,
			APIKeyEnv: cfg.APIKeyEnv,
			Model:     cfg.Model,
			Timeout:   cfg.Timeout,
		})
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKeyEnv: cfg.APIKeyEnv,
			Model:     cfg.Model,
			Timeout:   cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// Complete sends a single-prompt completion request.
func Complete(ctx context.Context, g domain.Generator, prompt string, opts domain.GenOptions) (string, error) {
	return g.Chat(ctx, []domain.Message{{Role: "user", Content: prompt}}, opts)
}

// StreamComplete sends a single-prompt streaming completion request.
func StreamComplete(ctx context.Context, g domain.Generator, prompt string, opts domain.GenOptions) (<-chan domain.Fragment, error) {
	return g.StreamChat(ctx, []domain.Message{{Role: "user", Content: prompt}}, opts)
}
