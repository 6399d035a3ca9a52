package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/Veraticus/expense-ai/internal/sheets"
	"github.com/Veraticus/expense-ai/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T) (*Reconciler, *sheets.MemoryStore) {
	t.Helper()
	store := sheets.NewMemoryStore()
	return NewReconciler(store, DefaultLayout(), testutil.DiscardLogger()), store
}

func ptr[T any](v T) *T { return &v }

func TestUpsertIntoEmptyYearThenQuery(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)

	summary, err := rec.UpdateExpensesByYear(ctx, []model.Expense{
		{Date: "2025-01-10", Amount: 12.5, Topic: "Coffee"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Year 2025: Updated: Added 1 expenses to Expense_2025", summary)

	assert.Equal(t, [][]any{
		{"Date", "Amount", "Description"},
		{"2025-01-10", "12.5", "Coffee"},
	}, store.Rows("Expense_2025"))

	found, err := rec.GetExpenses(ctx, Query{Year: ptr(2025), Topic: ptr("coffee")})
	require.NoError(t, err)
	assert.Equal(t, []model.Expense{{Date: "2025-01-10", Amount: 12.5, Topic: "Coffee"}}, found)
}

func TestUpsertWritesHeaderAndAppendsAfterExistingRows(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)
	store.Seed("Expense_2025", [][]any{header, {"2025-01-01", "1", "a"}, {"2025-01-02", "2", "b"}})

	_, err := rec.UpdateExpensesByYear(ctx, []model.Expense{{Date: "2025-01-03", Amount: 3, Topic: "c"}}, nil)
	require.NoError(t, err)

	var writes []sheets.Call
	for _, c := range store.Calls() {
		if c.Op == sheets.OpWrite {
			writes = append(writes, c)
		}
	}
	require.Len(t, writes, 1)
	assert.Equal(t, "A4:C", writes[0].Range)
	assert.Equal(t, sheets.UserEntered, writes[0].Mode)
	assert.Len(t, store.Rows("Expense_2025"), 4)
}

func TestUpsertCreatesPartitionWithHeader(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)

	_, err := rec.UpdateExpensesByYear(ctx, []model.Expense{{Date: "2026-07-04", Amount: 20, Topic: "Fireworks"}}, nil)
	require.NoError(t, err)

	var ops []string
	for _, c := range store.Calls() {
		ops = append(ops, string(c.Op)+" "+c.Range)
	}
	assert.Equal(t, []string{"list ", "create ", "write A1", "read A:C", "write A2:C"}, ops)
}

func TestRoundTripAcrossYears(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)
	repo := NewRepository(store, DefaultLayout(), testutil.DiscardLogger())

	batch := []model.Expense{
		{Date: "2025-03-01", Amount: 9.99, Topic: "Book"},
		{Date: "2024-12-31", Amount: 100, Topic: "Party"},
		{Date: "2025-01-15", Amount: 0.5, Topic: "Gum"},
	}

	summary, err := rec.UpdateExpensesByYear(ctx, batch, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"Year 2025: Updated: Added 2 expenses to Expense_2025\nYear 2024: Updated: Added 1 expenses to Expense_2024",
		summary)

	assert.ElementsMatch(t, []model.Expense{batch[0], batch[2]}, repo.GetByYear(ctx, 2025))
	assert.Equal(t, []model.Expense{batch[1]}, repo.GetByYear(ctx, 2024))
}

func TestDeleteIsCaseInsensitiveOnTopic(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)
	store.Seed("Expense_2025", [][]any{
		header,
		{"2025-01-10", "3", "COFFEE"},
		{"2025-01-10", "4", "coffee"},
		{"2025-01-10", "5", "Coffee beans"},
		{"2025-01-11", "3", "Coffee"},
		{"2025-01-10"},
	})

	summary, err := rec.UpdateExpensesByYear(ctx, nil, []model.Expense{{Date: "2025-01-10", Topic: "Coffee"}})
	require.NoError(t, err)
	assert.Equal(t, "Year 2025: Deleted 2 expense(s)", summary)

	assert.Equal(t, [][]any{
		{"Date", "Amount", "Description"},
		{"2025-01-10", "5", "Coffee beans"},
		{"2025-01-11", "3", "Coffee"},
		{"2025-01-10"},
	}, store.Rows("Expense_2025"))

	var ops []sheets.Op
	for _, c := range store.Calls() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []sheets.Op{sheets.OpRead, sheets.OpClear, sheets.OpWrite}, ops)
}

func TestDeleteWithoutMatchesDoesNotRewrite(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)
	store.Seed("Expense_2025", [][]any{header, {"2025-01-10", "3", "Tea"}})

	summary, err := rec.UpdateExpensesByYear(ctx, nil, []model.Expense{{Date: "2025-01-10", Topic: "Coffee"}})
	require.NoError(t, err)
	assert.Equal(t, "Year 2025: Deleted 0 expense(s)", summary)

	for _, c := range store.Calls() {
		assert.NotEqual(t, sheets.OpClear, c.Op)
		assert.NotEqual(t, sheets.OpWrite, c.Op)
	}
}

func TestUpsertAndDeleteSameYear(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)
	store.Seed("Expense_2025", [][]any{header, {"2025-01-10", "3", "Coffee"}})

	summary, err := rec.UpdateExpensesByYear(ctx,
		[]model.Expense{{Date: "2025-01-10", Amount: 3.5, Topic: "Coffee large"}},
		[]model.Expense{{Date: "2025-01-10", Topic: "coffee"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "Year 2025: Updated: Added 1 expenses to Expense_2025 | Deleted 1 expense(s)", summary)
	assert.Equal(t, [][]any{header, {"2025-01-10", "3.5", "Coffee large"}}, store.Rows("Expense_2025"))
}

func TestInvalidDateFailsWholeBatch(t *testing.T) {
	tests := []struct {
		name    string
		upserts []model.Expense
		deletes []model.Expense
	}{
		{
			name:    "bad upsert date",
			upserts: []model.Expense{{Date: "2025-01-10", Topic: "ok"}, {Date: "10/01/2025", Topic: "bad"}},
		},
		{
			name:    "bad delete date",
			upserts: []model.Expense{{Date: "2025-01-10", Topic: "ok"}},
			deletes: []model.Expense{{Date: "yesterday", Topic: "bad"}},
		},
		{
			name:    "empty date",
			upserts: []model.Expense{{Topic: "no date"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, store := newTestReconciler(t)

			_, err := rec.UpdateExpensesByYear(context.Background(), tt.upserts, tt.deletes)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidDate))
			assert.Empty(t, store.Calls())
		})
	}
}

func TestNoOperations(t *testing.T) {
	rec, _ := newTestReconciler(t)

	summary, err := rec.UpdateExpensesByYear(context.Background(), nil, []model.Expense{})
	require.NoError(t, err)
	assert.Equal(t, NoOperationsMessage, summary)
}

func TestPerYearFailuresAreIsolated(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestReconciler(t)
	store.Seed("Expense_2025", [][]any{header})
	store.FailOn(sheets.OpCreate, errors.New("quota exceeded"))

	summary, err := rec.UpdateExpensesByYear(ctx, []model.Expense{
		{Date: "2026-01-01", Amount: 1, Topic: "Future"},
		{Date: "2025-06-01", Amount: 2, Topic: "Present"},
	}, nil)
	require.NoError(t, err)

	lines := strings.Split(summary, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Year 2026: Error: Failed to update sheet for year 2026: "))
	assert.Contains(t, lines[0], "quota exceeded")
	assert.Equal(t, "Year 2025: Updated: Added 1 expenses to Expense_2025", lines[1])
}

func TestDeleteFailureFormatting(t *testing.T) {
	ctx := context.Background()

	t.Run("missing sheet without prior entry", func(t *testing.T) {
		rec, _ := newTestReconciler(t)

		summary, err := rec.UpdateExpensesByYear(ctx, nil, []model.Expense{{Date: "2030-01-01", Topic: "x"}})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(summary, "Year 2030: | Error: Failed to delete expenses from sheet Expense_2030: "))
	})

	t.Run("clear fails after upsert", func(t *testing.T) {
		rec, store := newTestReconciler(t)
		store.Seed("Expense_2025", [][]any{header, {"2025-01-10", "3", "Coffee"}})
		store.FailOn(sheets.OpClear, errors.New("clear denied"))

		summary, err := rec.UpdateExpensesByYear(ctx,
			[]model.Expense{{Date: "2025-02-01", Amount: 1, Topic: "Tea"}},
			[]model.Expense{{Date: "2025-01-10", Topic: "Coffee"}},
		)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(summary,
			"Year 2025: Updated: Added 1 expenses to Expense_2025 | Error: Failed to delete expenses from sheet Expense_2025: "))
		assert.Contains(t, summary, "clear denied")
	})
}
