package ledger

import (
	"fmt"
	"strings"

	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/shopspring/decimal"
)

const minRowCells = 3

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func parseAmount(v any) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(cellString(v)))
}

func expenseRow(e model.Expense) []any {
	return []any{e.Date, e.Amount, e.Topic}
}

func expenseRows(expenses []model.Expense) [][]any {
	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, expenseRow(e))
	}
	return rows
}

func rowKey(row []any) string {
	return model.MatchKey(cellString(row[0]), cellString(row[2]))
}

type yearGroup struct {
	Expenses []model.Expense
	Year     int
}

// groupByYear buckets expenses by calendar year, keeping the order in which
// each year first appears. Any unparsable date fails the whole batch.
func groupByYear(layout Layout, expenses []model.Expense) ([]yearGroup, error) {
	var groups []yearGroup
	index := make(map[int]int)

	for _, e := range expenses {
		year, err := layout.YearOf(e.Date)
		if err != nil {
			return nil, err
		}
		i, ok := index[year]
		if !ok {
			i = len(groups)
			index[year] = i
			groups = append(groups, yearGroup{Year: year})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
	}

	return groups, nil
}
