package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/expense-ai/internal/common"
)

// Provider names accepted by NewClient.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config holds LLM provider configuration.
type Config struct {
	Provider       string
	Host           string
	Model          string
	APIKey         string
	ContextWindow  int
	Temperature    float64
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxToolRounds  int
}

// DefaultConfig returns the local Ollama setup.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderOllama,
		Host:           "http://localhost:11434",
		Model:          "qwen3:8b",
		ContextWindow:  8192,
		Temperature:    0.2,
		ConnectTimeout: 60 * time.Second,
		ReadTimeout:    300 * time.Second,
		MaxToolRounds:  8,
	}
}

// Validate checks provider specific requirements.
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderOllama:
		if c.Host == "" {
			return fmt.Errorf("%w: ollama host is required", common.ErrMissingConfig)
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("%w: model is required", common.ErrMissingConfig)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("%w: temperature cannot be negative", common.ErrInvalidConfig)
	}
	if c.MaxToolRounds < 1 {
		return fmt.Errorf("%w: max tool rounds must be positive", common.ErrInvalidConfig)
	}
	return nil
}
