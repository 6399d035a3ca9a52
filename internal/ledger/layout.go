// Package ledger maps expenses onto year sheets: reading a year, reconciling
// add/update/delete batches and answering filtered queries.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/expense-ai/internal/common"
)

// Layout describes how expenses are laid out in the spreadsheet.
type Layout struct {
	// SheetPrefix is prepended to the year to name a partition.
	SheetPrefix string
	// Range is the column span holding date, amount and description, e.g. "A:C".
	Range string
	// DateLayout is the Go time layout of the date column.
	DateLayout string
	// Header is written to row 1 of every new partition.
	Header []string
}

// DefaultLayout returns the Expense_<year>, A:C, yyyy-MM-dd layout.
func DefaultLayout() Layout {
	return Layout{
		SheetPrefix: "Expense_",
		Range:       "A:C",
		DateLayout:  time.DateOnly,
		Header:      []string{"Date", "Amount", "Description"},
	}
}

// Validate checks that the layout can address rows.
func (l Layout) Validate() error {
	if l.SheetPrefix == "" {
		return fmt.Errorf("%w: sheet prefix is required", common.ErrInvalidConfig)
	}
	if l.DateLayout == "" {
		return fmt.Errorf("%w: date layout is required", common.ErrInvalidConfig)
	}
	if _, _, err := l.columns(); err != nil {
		return err
	}
	if len(l.Header) < 3 {
		return fmt.Errorf("%w: header needs date, amount and description columns", common.ErrInvalidConfig)
	}
	return nil
}

// PartitionName returns the sheet name holding expenses of year.
func (l Layout) PartitionName(year int) string {
	return l.SheetPrefix + strconv.Itoa(year)
}

// YearOf parses date with the layout and returns its calendar year.
func (l Layout) YearOf(date string) (int, error) {
	t, err := time.Parse(l.DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", common.ErrInvalidDate, date, err)
	}
	return t.Year(), nil
}

// Today formats now with the date layout.
func (l Layout) Today(now time.Time) string {
	return now.Format(l.DateLayout)
}

func (l Layout) headerRow() []any {
	row := make([]any, len(l.Header))
	for i, h := range l.Header {
		row[i] = h
	}
	return row
}

// headerRange is the top-left cell of the range, where the header starts.
func (l Layout) headerRange() string {
	first, _, _ := l.columns()
	return first + "1"
}

// rowsFrom returns an open range beginning at row n, e.g. "A5:C".
func (l Layout) rowsFrom(n int) string {
	first, last, _ := l.columns()
	return fmt.Sprintf("%s%d:%s", first, n, last)
}

func (l Layout) columns() (string, string, error) {
	first, last, ok := strings.Cut(l.Range, ":")
	if !ok || first == "" || last == "" || !isColumn(first) || !isColumn(last) {
		return "", "", fmt.Errorf("%w: range %q must be a column span like A:C", common.ErrInvalidConfig, l.Range)
	}
	return first, last, nil
}

func isColumn(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
