// Package config maps viper settings onto the component configurations.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/expense-ai/internal/api"
	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/ledger"
	"github.com/Veraticus/expense-ai/internal/llm"
	"github.com/spf13/viper"
)

// AppName names the config directory and the environment prefix.
const AppName = "expense-ai"

// EnvPrefix is prepended to every environment override, e.g.
// EXPENSE_SHEETS_SPREADSHEET_ID.
const EnvPrefix = "EXPENSE"

// DefaultGeminiModel is used when the gemini provider has no model set.
const DefaultGeminiModel = "gemini-2.5-flash"

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	server := api.DefaultConfig()
	v.SetDefault("server.addr", server.Addr)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	chat := llm.DefaultConfig()
	v.SetDefault("llm.provider", chat.Provider)
	v.SetDefault("llm.num_ctx", chat.ContextWindow)
	v.SetDefault("llm.temperature", chat.Temperature)
	v.SetDefault("llm.connect_timeout", chat.ConnectTimeout)
	v.SetDefault("llm.read_timeout", chat.ReadTimeout)
	v.SetDefault("llm.max_tool_rounds", chat.MaxToolRounds)

	layout := ledger.DefaultLayout()
	v.SetDefault("sheets.sheet_prefix", layout.SheetPrefix)
	v.SetDefault("sheets.range", layout.Range)
	v.SetDefault("sheets.date_layout", layout.DateLayout)
	v.SetDefault("sheets.header", layout.Header)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Configure points v at the config file and the environment.
func Configure(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return fmt.Errorf("failed to get config directory: %w", err)
		}
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// LoadLLMConfig builds the chat model configuration.
func LoadLLMConfig(v *viper.Viper) (llm.Config, error) {
	cfg := llm.Config{
		Provider:       strings.ToLower(v.GetString("llm.provider")),
		Host:           v.GetString("llm.host"),
		Model:          v.GetString("llm.model"),
		APIKey:         v.GetString("llm.api_key"),
		ContextWindow:  v.GetInt("llm.num_ctx"),
		Temperature:    v.GetFloat64("llm.temperature"),
		ConnectTimeout: v.GetDuration("llm.connect_timeout"),
		ReadTimeout:    v.GetDuration("llm.read_timeout"),
		MaxToolRounds:  v.GetInt("llm.max_tool_rounds"),
	}

	switch cfg.Provider {
	case llm.ProviderOllama:
		if cfg.Host == "" {
			cfg.Host = firstEnv("OLLAMA_HOST")
		}
		if cfg.Host == "" {
			cfg.Host = llm.DefaultConfig().Host
		}
		if cfg.Model == "" {
			cfg.Model = llm.DefaultConfig().Model
		}
	case llm.ProviderGemini:
		if cfg.APIKey == "" {
			cfg.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
		if cfg.Model == "" {
			cfg.Model = DefaultGeminiModel
		}
	}

	if err := cfg.Validate(); err != nil {
		return llm.Config{}, err
	}
	return cfg, nil
}

// LoadLayout builds the sheet layout.
func LoadLayout(v *viper.Viper) (ledger.Layout, error) {
	layout := ledger.Layout{
		SheetPrefix: v.GetString("sheets.sheet_prefix"),
		Range:       v.GetString("sheets.range"),
		DateLayout:  v.GetString("sheets.date_layout"),
		Header:      v.GetStringSlice("sheets.header"),
	}
	if err := layout.Validate(); err != nil {
		return ledger.Layout{}, err
	}
	return layout, nil
}

// LoadServerConfig builds the HTTP server configuration.
func LoadServerConfig(v *viper.Viper) (api.Config, error) {
	cfg := api.Config{
		Addr:            v.GetString("server.addr"),
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
	}
	if cfg.Addr == "" {
		return api.Config{}, fmt.Errorf("%w: server.addr is required", common.ErrMissingConfig)
	}
	for key, d := range map[string]time.Duration{
		"server.read_timeout":     cfg.ReadTimeout,
		"server.write_timeout":    cfg.WriteTimeout,
		"server.shutdown_timeout": cfg.ShutdownTimeout,
	} {
		if d <= 0 {
			return api.Config{}, fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, key)
		}
	}
	return cfg, nil
}

// LoadPromptsLocation returns the prompt override location, or "" for the
// embedded templates.
func LoadPromptsLocation(v *viper.Viper) string {
	return ExpandPath(strings.TrimSpace(v.GetString("prompts.location")))
}

// LoadLogging returns the configured log level and format.
func LoadLogging(v *viper.Viper) (string, string) {
	return v.GetString("logging.level"), v.GetString("logging.format")
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
