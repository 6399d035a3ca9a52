package llm

import (
	"context"
	"testing"

	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		modify  func(*Config)
		wantErr error
		name    string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "gemini with key", modify: func(c *Config) {
			c.Provider = ProviderGemini
			c.APIKey = "key"
			c.Model = "gemini-2.5-flash"
		}},
		{name: "provider is case insensitive", modify: func(c *Config) { c.Provider = "Ollama" }},
		{name: "missing host", modify: func(c *Config) { c.Host = "" }, wantErr: common.ErrMissingConfig},
		{name: "gemini without key", modify: func(c *Config) { c.Provider = ProviderGemini }, wantErr: common.ErrMissingConfig},
		{name: "unknown provider", modify: func(c *Config) { c.Provider = "openai" }, wantErr: common.ErrInvalidConfig},
		{name: "missing model", modify: func(c *Config) { c.Model = "" }, wantErr: common.ErrMissingConfig},
		{name: "negative temperature", modify: func(c *Config) { c.Temperature = -1 }, wantErr: common.ErrInvalidConfig},
		{name: "zero tool rounds", modify: func(c *Config) { c.MaxToolRounds = 0 }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewClient(t *testing.T) {
	logger := testutil.DiscardLogger()

	client, err := NewClient(context.Background(), DefaultConfig(), logger)
	require.NoError(t, err)
	assert.IsType(t, &ollamaClient{}, client)

	cfg := DefaultConfig()
	cfg.Provider = ProviderGemini
	cfg.Host = ""
	cfg.Model = "gemini-2.5-flash"
	cfg.APIKey = "key"
	client, err = NewClient(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &geminiClient{}, client)

	cfg.Provider = "bedrock"
	_, err = NewClient(context.Background(), cfg, logger)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}
