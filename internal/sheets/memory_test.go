package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreWriteAndRead(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreatePartition(ctx, "Expense_2025"))
	_, err := store.WriteRange(ctx, "Expense_2025", "A1", [][]any{{"Date", "Amount", "Description"}}, UserEntered)
	require.NoError(t, err)

	n, err := store.WriteRange(ctx, "Expense_2025", "A2:C", [][]any{
		{"2025-01-10", 12.5, "Coffee"},
		{"2025-01-11", 3.0, "Bus"},
	}, UserEntered)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := store.ReadRange(ctx, "Expense_2025", "A:C")
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"Date", "Amount", "Description"},
		{"2025-01-10", "12.5", "Coffee"},
		{"2025-01-11", "3", "Bus"},
	}, rows)
}

func TestMemoryStoreClearRange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed("Expense_2025", [][]any{{"Date", "Amount", "Description"}, {"2025-01-10", "1", "x"}})

	require.NoError(t, store.ClearRange(ctx, "Expense_2025", "A:C"))

	rows, err := store.ReadRange(ctx, "Expense_2025", "A:C")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemoryStoreMissingPartition(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.ReadRange(ctx, "Expense_1999", "A:C")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteStore))

	_, err = store.WriteRange(ctx, "Expense_1999", "A1", [][]any{{"x"}}, UserEntered)
	assert.True(t, errors.Is(err, common.ErrRemoteStore))
}

func TestMemoryStoreCreateTwice(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.CreatePartition(ctx, "Expense_2025"))
	assert.Error(t, store.CreatePartition(ctx, "Expense_2025"))

	names, err := store.ListPartitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Expense_2025"}, names)
}

func TestMemoryStoreFailOn(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("boom")

	store.FailOn(OpList, boom)
	_, err := store.ListPartitions(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, common.ErrRemoteStore))

	store.FailOn(OpList, nil)
	_, err = store.ListPartitions(ctx)
	assert.NoError(t, err)

	calls := store.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, OpList, calls[0].Op)
}

func TestStartRow(t *testing.T) {
	tests := []struct {
		rng  string
		want int
	}{
		{rng: "A:C", want: 1},
		{rng: "A1", want: 1},
		{rng: "A7:C", want: 7},
		{rng: "AB12:C20", want: 12},
		{rng: "", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			assert.Equal(t, tt.want, startRow(tt.rng))
		})
	}
}
