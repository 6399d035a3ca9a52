package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// NewClient creates a chat client for the configured provider. Every provider
// talks through NewHTTPClient, so connect/read timeouts and reasoning markup
// removal apply uniformly.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := NewHTTPClient(cfg, logger)

	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama:
		client, err = newOllamaClient(cfg, httpClient, logger)
	case ProviderGemini:
		client, err = newGeminiClient(ctx, cfg, httpClient, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	return client, nil
}
