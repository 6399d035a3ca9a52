package sheets

import (
	"context"
	"fmt"
	"slices"

	"github.com/Veraticus/expense-ai/internal/common"
)

// InputMode controls how the store interprets written cell values.
type InputMode string

const (
	// UserEntered parses values as if typed into the sheet UI.
	UserEntered InputMode = "USER_ENTERED"
)

// Store is a spreadsheet seen as a set of named partitions (tabs) holding
// rows of cells. Ranges are A1 notation relative to a partition, e.g. "A:C".
type Store interface {
	ListPartitions(ctx context.Context) ([]string, error)
	ReadRange(ctx context.Context, partition, rng string) ([][]any, error)
	WriteRange(ctx context.Context, partition, rng string, rows [][]any, mode InputMode) (int, error)
	ClearRange(ctx context.Context, partition, rng string) error
	CreatePartition(ctx context.Context, name string) error
}

// HasPartition reports whether the store has a partition with the given name.
func HasPartition(ctx context.Context, store Store, name string) (bool, error) {
	names, err := store.ListPartitions(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// A1 joins a partition name and a relative range.
func A1(partition, rng string) string {
	if rng == "" {
		return partition
	}
	return partition + "!" + rng
}

func storeError(op, target string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", common.ErrRemoteStore, op, target, err)
}
