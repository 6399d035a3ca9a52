package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/Veraticus/expense-ai/internal/sheets"
)

// NoOperationsMessage is returned when a reconciliation touched no year.
const NoOperationsMessage = "No operations performed. No expenses provided for adding/updating or deleting."

// Reconciler applies add/update and delete batches to year sheets and runs
// filtered queries against them. Store calls are never retried.
type Reconciler struct {
	store  sheets.Store
	logger *slog.Logger
	layout Layout
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store sheets.Store, layout Layout, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		layout: layout,
		logger: logger,
	}
}

// UpdateExpensesByYear appends toAddOrUpdate to their year sheets and removes
// rows matching toDelete by date and case-insensitive topic. It returns one
// summary line per affected year. Per-year store failures are reported in the
// summary; the error is only set when a date cannot be parsed, in which case
// nothing is written.
func (r *Reconciler) UpdateExpensesByYear(ctx context.Context, toAddOrUpdate, toDelete []model.Expense) (string, error) {
	upserts, err := groupByYear(r.layout, toAddOrUpdate)
	if err != nil {
		return "", err
	}
	deletes, err := groupByYear(r.layout, toDelete)
	if err != nil {
		return "", err
	}

	results := &yearResults{lines: make(map[int]string)}

	for _, group := range upserts {
		partition := r.layout.PartitionName(group.Year)
		result, err := r.appendToYear(ctx, partition, group.Expenses)
		if err != nil {
			msg := fmt.Sprintf("Failed to update sheet for year %d: %s", group.Year, err)
			r.logger.Error(msg, "error", err)
			results.set(group.Year, "Error: "+msg)
			continue
		}
		results.set(group.Year, "Updated: "+result)
	}

	for _, group := range deletes {
		partition := r.layout.PartitionName(group.Year)
		deleted, err := r.deleteFromYear(ctx, partition, group.Expenses)
		if err != nil {
			msg := fmt.Sprintf("Failed to delete expenses from sheet %s: %s", partition, err)
			r.logger.Error(msg, "error", err)
			existing, _ := results.get(group.Year)
			results.set(group.Year, strings.TrimSpace(existing+" | Error: "+msg))
			continue
		}
		result := fmt.Sprintf("Deleted %d expense(s)", deleted)
		if existing, ok := results.get(group.Year); ok {
			result = existing + " | " + result
		}
		results.set(group.Year, result)
	}

	if results.empty() {
		return NoOperationsMessage, nil
	}
	return results.String(), nil
}

func (r *Reconciler) ensurePartition(ctx context.Context, partition string) error {
	exists, err := sheets.HasPartition(ctx, r.store, partition)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := r.store.CreatePartition(ctx, partition); err != nil {
		return err
	}
	if _, err := r.store.WriteRange(ctx, partition, r.layout.headerRange(), [][]any{r.layout.headerRow()}, sheets.UserEntered); err != nil {
		return err
	}

	r.logger.Info("Created new sheet", "sheet", partition)
	return nil
}

func (r *Reconciler) appendToYear(ctx context.Context, partition string, expenses []model.Expense) (string, error) {
	if err := r.ensurePartition(ctx, partition); err != nil {
		return "", err
	}

	rows, err := r.store.ReadRange(ctx, partition, r.layout.Range)
	if err != nil {
		return "", err
	}

	// Row 1 is the header, so an empty read still starts at row 2.
	nextRow := 2
	if len(rows) > 0 {
		nextRow = len(rows) + 1
	}

	written, err := r.store.WriteRange(ctx, partition, r.layout.rowsFrom(nextRow), expenseRows(expenses), sheets.UserEntered)
	if err != nil {
		return "", err
	}

	r.logger.Info("Updated rows in sheet", "rows", written, "sheet", partition)
	return fmt.Sprintf("Added %d expenses to %s", len(expenses), partition), nil
}

// deleteFromYear rewrites the partition without the matching rows. The clear
// and the rewrite are two separate calls.
func (r *Reconciler) deleteFromYear(ctx context.Context, partition string, expenses []model.Expense) (int, error) {
	if len(expenses) == 0 {
		return 0, nil
	}

	rows, err := r.store.ReadRange(ctx, partition, r.layout.Range)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	keys := make(map[string]struct{}, len(expenses))
	for _, e := range expenses {
		keys[e.MatchKey()] = struct{}{}
	}

	kept := [][]any{rows[0]}
	deleted := 0
	for i, row := range rows[1:] {
		if len(row) < minRowCells {
			r.logger.Warn("Keeping malformed row", "sheet", partition, "row", i+2)
			kept = append(kept, row)
			continue
		}
		if _, ok := keys[rowKey(row)]; ok {
			deleted++
			continue
		}
		kept = append(kept, row)
	}

	if deleted == 0 {
		return 0, nil
	}

	if err := r.store.ClearRange(ctx, partition, r.layout.Range); err != nil {
		return 0, err
	}
	if _, err := r.store.WriteRange(ctx, partition, r.layout.Range, kept, sheets.UserEntered); err != nil {
		return 0, err
	}

	return deleted, nil
}

// yearResults keeps one summary entry per year in insertion order.
type yearResults struct {
	lines map[int]string
	years []int
}

func (y *yearResults) set(year int, line string) {
	if _, ok := y.lines[year]; !ok {
		y.years = append(y.years, year)
	}
	y.lines[year] = line
}

func (y *yearResults) get(year int) (string, bool) {
	line, ok := y.lines[year]
	return line, ok
}

func (y *yearResults) empty() bool {
	return len(y.years) == 0
}

func (y *yearResults) String() string {
	out := make([]string, 0, len(y.years))
	for _, year := range y.years {
		out = append(out, "Year "+strconv.Itoa(year)+": "+y.lines[year])
	}
	return strings.Join(out, "\n")
}
