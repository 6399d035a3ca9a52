package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/expense-ai/internal/assistant"
	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/config"
	"github.com/Veraticus/expense-ai/internal/ledger"
	"github.com/Veraticus/expense-ai/internal/llm"
	"github.com/Veraticus/expense-ai/internal/prompts"
	"github.com/Veraticus/expense-ai/internal/sheets"
	"github.com/spf13/viper"
)

const (
	storeSheets = "sheets"
	storeMemory = "memory"
)

// app holds the components a command needs.
type app struct {
	logger     *slog.Logger
	store      sheets.Store
	repository *ledger.Repository
	reconciler *ledger.Reconciler
	assistant  *assistant.Service
	prompts    *prompts.Loader
	layout     ledger.Layout
}

// newApp wires the ledger and, when withChat is set, the chat model and
// prompt loader.
func newApp(ctx context.Context, v *viper.Viper, withChat bool) (*app, error) {
	logger := slog.Default()

	layout, err := config.LoadLayout(v)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, v, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		logger:     logger,
		store:      store,
		layout:     layout,
		repository: ledger.NewRepository(store, layout, logger),
		reconciler: ledger.NewReconciler(store, layout, logger),
	}

	if !withChat {
		return a, nil
	}

	llmConfig, err := config.LoadLLMConfig(v)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, llmConfig, logger)
	if err != nil {
		return nil, err
	}

	loader, err := prompts.NewLoader(ctx, config.LoadPromptsLocation(v), logger)
	if err != nil {
		return nil, err
	}
	a.prompts = loader

	a.assistant = assistant.NewService(client, loader, a.reconciler, logger,
		assistant.WithDateLayout(layout.DateLayout))

	logger.Debug("Chat model configured", "provider", llmConfig.Provider, "model", llmConfig.Model)
	return a, nil
}

func newStore(ctx context.Context, v *viper.Viper, logger *slog.Logger) (sheets.Store, error) {
	switch kind := v.GetString("store"); kind {
	case storeSheets, "":
		sheetsConfig, err := config.LoadSheetsConfig(v)
		if err != nil {
			return nil, err
		}
		client, err := sheets.NewClient(ctx, *sheetsConfig, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case storeMemory:
		logger.Warn("Using in-memory expense store; nothing is persisted")
		return sheets.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store %q", common.ErrInvalidConfig, kind)
	}
}

func (a *app) Close() error {
	var errs []error
	if a.prompts != nil {
		errs = append(errs, a.prompts.Close())
	}
	return errors.Join(errs...)
}
