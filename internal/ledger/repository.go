package ledger

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/Veraticus/expense-ai/internal/sheets"
)

// Repository reads whole years of expenses.
type Repository struct {
	store  sheets.Store
	logger *slog.Logger
	layout Layout
}

// NewRepository creates a repository over store.
func NewRepository(store sheets.Store, layout Layout, logger *slog.Logger) *Repository {
	return &Repository{
		store:  store,
		layout: layout,
		logger: logger,
	}
}

// GetByYear returns every expense of year sorted by date string. Store
// failures are logged and yield an empty list.
func (r *Repository) GetByYear(ctx context.Context, year int) []model.Expense {
	partition := r.layout.PartitionName(year)
	expenses := []model.Expense{}

	exists, err := sheets.HasPartition(ctx, r.store, partition)
	if err != nil {
		r.logger.Warn("Error accessing sheets", "year", year, "error", err)
		return []model.Expense{}
	}
	if !exists {
		r.logger.Info("Sheet does not exist, returning empty list", "sheet", partition)
		return expenses
	}

	rows, err := r.store.ReadRange(ctx, partition, r.layout.Range)
	if err != nil {
		r.logger.Warn("Error accessing sheets", "year", year, "error", err)
		return []model.Expense{}
	}
	if len(rows) == 0 {
		r.logger.Info("No data found in sheet", "sheet", partition)
		return expenses
	}

	for i, row := range rows[1:] {
		if len(row) < minRowCells {
			continue
		}
		amount, err := parseAmount(row[1])
		if err != nil {
			r.logger.Warn("Error parsing expense row", "sheet", partition, "row", i+2, "error", err)
			continue
		}
		expenses = append(expenses, model.Expense{
			Date:   cellString(row[0]),
			Amount: amount.InexactFloat64(),
			Topic:  cellString(row[2]),
		})
	}

	slices.SortStableFunc(expenses, func(a, b model.Expense) int {
		return strings.Compare(a.Date, b.Date)
	})

	return expenses
}
