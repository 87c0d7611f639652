package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewProvider creates a provider based on configuration. An empty or "none"
// provider name disables generation and returns nil.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "gemini", "google":
		p, err = NewGeminiProvider(ctx, config)
	case "openai":
		p, err = NewOpenAIProvider(config)
	case "ollama":
		p, err = NewOllamaProvider(config)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: gemini, openai, ollama)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case config.Limiter != nil:
		p = NewSharedLimited(p, config.Limiter)
	case config.RequestsPerSecond > 0:
		p = NewLimited(p, config.RequestsPerSecond, config.Burst)
	}
	return p, nil
}
