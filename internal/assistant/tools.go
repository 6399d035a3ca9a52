package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/ledger"
	"github.com/Veraticus/expense-ai/internal/llm"
	"github.com/Veraticus/expense-ai/internal/model"
)

// ExpenseUpdater applies add/update and delete batches.
type ExpenseUpdater interface {
	UpdateExpensesByYear(ctx context.Context, toAddOrUpdate, toDelete []model.Expense) (string, error)
}

// ExpenseSearcher runs filtered expense queries.
type ExpenseSearcher interface {
	GetExpenses(ctx context.Context, q ledger.Query) ([]model.Expense, error)
}

func expenseSchema() *llm.Schema {
	return llm.ObjectSchema(map[string]*llm.Schema{
		"date":   llm.ScalarSchema(llm.TypeString, "Date of the expense in yyyy-MM-dd format"),
		"amount": llm.ScalarSchema(llm.TypeNumber, "Amount spent"),
		"topic":  llm.ScalarSchema(llm.TypeString, "Short description of what the money was spent on"),
	}, "date", "amount", "topic")
}

// DateTool reports today's date.
type DateTool struct {
	now    func() time.Time
	layout string
}

// NewDateTool returns a getDate tool formatting now() with layout.
func NewDateTool(now func() time.Time, layout string) *DateTool {
	return &DateTool{now: now, layout: layout}
}

func (t *DateTool) Name() string { return "getDate" }

func (t *DateTool) Description() string {
	return "Get the current date. Returns a string in the format 'yyyy-MM-dd'."
}

func (t *DateTool) Parameters() *llm.Schema {
	return llm.ObjectSchema(map[string]*llm.Schema{})
}

func (t *DateTool) Call(context.Context, json.RawMessage) (string, error) {
	return t.now().Format(t.layout), nil
}

// UpdateExpensesTool exposes reconciliation to the model.
type UpdateExpensesTool struct {
	updater ExpenseUpdater
}

// NewUpdateExpensesTool returns an updateExpensesByYear tool.
func NewUpdateExpensesTool(updater ExpenseUpdater) *UpdateExpensesTool {
	return &UpdateExpensesTool{updater: updater}
}

func (t *UpdateExpensesTool) Name() string { return "updateExpensesByYear" }

func (t *UpdateExpensesTool) Description() string {
	return "Manage expenses in the Google Sheet, organized by year. Can add/update and delete expenses in a single operation."
}

func (t *UpdateExpensesTool) Parameters() *llm.Schema {
	return llm.ObjectSchema(map[string]*llm.Schema{
		"expensesToAddOrUpdate": llm.ArraySchema("List of expenses to add or update", expenseSchema()),
		"expensesToDelete":      llm.ArraySchema("List of expenses to delete (only date and topic are used for matching)", expenseSchema()),
	})
}

type updateArgs struct {
	ExpensesToAddOrUpdate []model.Expense `json:"expensesToAddOrUpdate"`
	ExpensesToDelete      []model.Expense `json:"expensesToDelete"`
}

func (t *UpdateExpensesTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in updateArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	return t.updater.UpdateExpensesByYear(ctx, in.ExpensesToAddOrUpdate, in.ExpensesToDelete)
}

// GetExpensesTool exposes expense search to the model.
type GetExpensesTool struct {
	searcher ExpenseSearcher
}

// NewGetExpensesTool returns a getExpenses tool.
func NewGetExpensesTool(searcher ExpenseSearcher) *GetExpensesTool {
	return &GetExpensesTool{searcher: searcher}
}

func (t *GetExpensesTool) Name() string { return "getExpenses" }

func (t *GetExpensesTool) Description() string {
	return "Search for expenses matching the specified criteria. Year is required. " +
		"If month is provided, year must be provided. If day is provided, both year and month must be provided."
}

func (t *GetExpensesTool) Parameters() *llm.Schema {
	return llm.ObjectSchema(map[string]*llm.Schema{
		"year":   llm.ScalarSchema(llm.TypeInteger, "Year to search (e.g., 2025)"),
		"month":  llm.ScalarSchema(llm.TypeInteger, "Month to search (1-12), requires year"),
		"day":    llm.ScalarSchema(llm.TypeInteger, "Day of month to search (1-31), requires year and month"),
		"topic":  llm.ScalarSchema(llm.TypeString, "Topic to match (case-insensitive partial match)"),
		"amount": llm.ScalarSchema(llm.TypeNumber, "Exact amount to match"),
	}, "year")
}

type queryArgs struct {
	Year   *int     `json:"year"`
	Month  *int     `json:"month"`
	Day    *int     `json:"day"`
	Topic  *string  `json:"topic"`
	Amount *float64 `json:"amount"`
}

// Call returns the matching expenses as a JSON array.
func (t *GetExpensesTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in queryArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	expenses, err := t.searcher.GetExpenses(ctx, ledger.Query(in))
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("failed to encode expenses: %w", err)
	}
	return string(out), nil
}
