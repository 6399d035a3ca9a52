package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/Veraticus/expense-ai/internal/sheets"
	"github.com/shopspring/decimal"
)

// amountTolerance is how far a row amount may be from the requested amount.
var amountTolerance = decimal.New(1, -3)

// Query selects expenses of one year. Nil fields do not filter.
type Query struct {
	Year   *int
	Month  *int
	Day    *int
	Topic  *string
	Amount *float64
}

// Validate enforces that day requires month and month requires year.
func (q Query) Validate() error {
	if q.Year == nil {
		if q.Month != nil {
			return fmt.Errorf("%w: year must be provided when month is specified", common.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: year is required", common.ErrInvalidArgument)
	}
	if q.Day != nil && q.Month == nil {
		return fmt.Errorf("%w: both year and month must be provided when day is specified", common.ErrInvalidArgument)
	}
	return nil
}

func (q Query) matches(date time.Time, amount decimal.Decimal, topic string) bool {
	if q.Month != nil && int(date.Month()) != *q.Month {
		return false
	}
	if q.Day != nil && date.Day() != *q.Day {
		return false
	}
	if q.Amount != nil && amount.Sub(decimal.NewFromFloat(*q.Amount)).Abs().GreaterThan(amountTolerance) {
		return false
	}
	if q.Topic != nil && !strings.Contains(strings.ToLower(topic), strings.ToLower(*q.Topic)) {
		return false
	}
	return true
}

// GetExpenses returns the rows of the query's year passing every filter.
// Rows that do not parse are skipped. A missing year sheet is not an error.
func (r *Reconciler) GetExpenses(ctx context.Context, q Query) ([]model.Expense, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	partition := r.layout.PartitionName(*q.Year)
	matching := []model.Expense{}

	exists, err := sheets.HasPartition(ctx, r.store, partition)
	if err != nil {
		r.logger.Error("Error accessing sheets", "error", err)
		return nil, fmt.Errorf("failed to retrieve expenses: %w", err)
	}
	if !exists {
		return matching, nil
	}

	rows, err := r.store.ReadRange(ctx, partition, r.layout.Range)
	if err != nil {
		r.logger.Error("Error accessing sheets", "error", err)
		return nil, fmt.Errorf("failed to retrieve expenses: %w", err)
	}
	if len(rows) <= 1 {
		return matching, nil
	}

	for _, row := range rows[1:] {
		if len(row) < minRowCells {
			continue
		}
		amount, err := parseAmount(row[1])
		if err != nil {
			continue
		}
		date, err := time.Parse(r.layout.DateLayout, cellString(row[0]))
		if err != nil {
			continue
		}
		topic := cellString(row[2])
		if !q.matches(date, amount, topic) {
			continue
		}
		matching = append(matching, model.Expense{
			Date:   date.Format(r.layout.DateLayout),
			Amount: amount.InexactFloat64(),
			Topic:  topic,
		})
	}

	return matching, nil
}
