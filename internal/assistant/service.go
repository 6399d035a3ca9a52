// Package assistant turns chat messages into expense records and answers
// free-form questions, letting the chat model call ledger tools.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/llm"
	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/Veraticus/expense-ai/internal/prompts"
)

// Fixed user-facing messages.
const (
	ParseFailureMessage = "Failed to process expense information. Please try again."
	ApologyMessage      = "I'm sorry, I encountered an error while processing your request. " +
		"Please try again or rephrase your message."
)

// PromptRenderer renders a named system prompt.
type PromptRenderer interface {
	Render(ctx context.Context, name string, data prompts.Data) (string, error)
}

// Ledger is everything the assistant tools need from expense storage.
type Ledger interface {
	ExpenseUpdater
	ExpenseSearcher
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for the date tool and prompts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithDateLayout overrides the yyyy-MM-dd date layout.
func WithDateLayout(layout string) Option {
	return func(s *Service) {
		s.dateLayout = layout
	}
}

// Service runs the structured extraction and free-form assistant flows.
type Service struct {
	client     llm.Client
	prompts    PromptRenderer
	ledger     Ledger
	logger     *slog.Logger
	now        func() time.Time
	dateLayout string
}

// NewService creates an assistant backed by client and ledger.
func NewService(client llm.Client, renderer PromptRenderer, ledger Ledger, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		client:     client,
		prompts:    renderer,
		ledger:     ledger,
		logger:     logger,
		now:        time.Now,
		dateLayout: time.DateOnly,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tools returns the capabilities offered to the model in free-form chat.
func (s *Service) Tools() []llm.Tool {
	return []llm.Tool{
		NewUpdateExpensesTool(s.ledger),
		NewDateTool(s.now, s.dateLayout),
		NewGetExpensesTool(s.ledger),
	}
}

// ParseChatMessage asks the model to extract the expenses mentioned in
// message. Every failure is reported as ErrChatProcessing carrying
// ParseFailureMessage.
func (s *Service) ParseChatMessage(ctx context.Context, message string) ([]model.Expense, error) {
	expenses, err := s.parse(ctx, message)
	if err != nil {
		common.LogError(ctx, s.logger, err, "Error processing chat message", nil)
		return nil, common.NewUserError(ParseFailureMessage, fmt.Errorf("%w: %w", common.ErrChatProcessing, err))
	}
	return expenses, nil
}

func (s *Service) parse(ctx context.Context, message string) ([]model.Expense, error) {
	system, err := s.systemPrompt(ctx, prompts.ExpenseParse)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Chat(ctx, llm.Request{
		System: system,
		User:   message,
		Format: llm.ArraySchema("Expenses mentioned in the message", expenseSchema()),
	})
	if err != nil {
		return nil, err
	}

	expenses := []model.Expense{}
	if err := llm.DecodeJSON(resp.Content, &expenses); err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}

	s.logger.Debug("Parsed expenses", "count", len(expenses))
	return expenses, nil
}

// ProcessChatMessage lets the model answer message with the ledger tools
// available. It never fails: errors and panics become ApologyMessage.
func (s *Service) ProcessChatMessage(ctx context.Context, message string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Panic while processing chat message", "panic", r)
			reply = ApologyMessage
		}
	}()

	system, err := s.systemPrompt(ctx, prompts.ExpenseAssistant)
	if err != nil {
		common.LogError(ctx, s.logger, err, "Error processing chat message", nil)
		return ApologyMessage
	}

	resp, err := s.client.Chat(ctx, llm.Request{
		System: system,
		User:   message,
		Tools:  s.Tools(),
	})
	if err != nil {
		common.LogError(ctx, s.logger, err, "Error processing chat message", nil)
		return ApologyMessage
	}

	s.logger.Debug("Chat reply", "tool_calls", resp.ToolCalls)
	return strings.TrimSpace(resp.Content)
}

func (s *Service) systemPrompt(ctx context.Context, name string) (string, error) {
	return s.prompts.Render(ctx, name, prompts.Data{Today: s.now().Format(s.dateLayout)})
}
