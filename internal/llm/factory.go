package llm

import (
	"context"

	"songbird/config"

	"github.com/pkg/errors"
)

// NewProvider builds the model backend named by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "gemini", "google":
		return NewGeminiProvider(ctx, cfg)
	case "openai", "deepseek":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, errors.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
