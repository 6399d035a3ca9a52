package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// Op names a Store operation for error injection and call recording.
type Op string

// Store operations.
const (
	OpList   Op = "list"
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpClear  Op = "clear"
	OpCreate Op = "create"
)

// Call is one recorded Store invocation.
type Call struct {
	Op        Op
	Partition string
	Range     string
	Rows      [][]any
	Mode      InputMode
}

// MemoryStore is an in-memory Store. Written values are stored the way the
// Sheets API renders them back: as strings. Reads of a missing partition fail
// like the real API does.
type MemoryStore struct {
	partitions map[string][][]any
	order      []string
	errors     map[Op]error
	calls      []Call
	mu         sync.Mutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[string][][]any),
		errors:     make(map[Op]error),
	}
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (m *MemoryStore) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errors, op)
		return
	}
	m.errors[op] = err
}

// Calls returns a copy of the recorded calls.
func (m *MemoryStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Rows returns a copy of a partition's rows, or nil if it does not exist.
func (m *MemoryStore) Rows(partition string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.partitions[partition]
	if !ok {
		return nil
	}
	return copyRows(trimEmpty(rows))
}

// Seed creates partition if needed and replaces its content with rows.
func (m *MemoryStore) Seed(partition string, rows [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partitions[partition]; !ok {
		m.order = append(m.order, partition)
	}
	m.partitions[partition] = copyRows(rows)
}

// ListPartitions implements Store.
func (m *MemoryStore) ListPartitions(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpList})
	if err := m.errors[OpList]; err != nil {
		return nil, storeError(string(OpList), "memory", err)
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out, nil
}

// ReadRange implements Store. The range's column bounds are ignored.
func (m *MemoryStore) ReadRange(_ context.Context, partition, rng string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpRead, Partition: partition, Range: rng})
	if err := m.errors[OpRead]; err != nil {
		return nil, storeError(string(OpRead), A1(partition, rng), err)
	}
	rows, ok := m.partitions[partition]
	if !ok {
		return nil, storeError(string(OpRead), A1(partition, rng), fmt.Errorf("unable to parse range: %s", A1(partition, rng)))
	}
	start := startRow(rng)
	rows = trimEmpty(rows)
	if start-1 >= len(rows) {
		return nil, nil
	}
	return copyRows(rows[start-1:]), nil
}

// WriteRange implements Store.
func (m *MemoryStore) WriteRange(_ context.Context, partition, rng string, rows [][]any, mode InputMode) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpWrite, Partition: partition, Range: rng, Rows: copyRows(rows), Mode: mode})
	if err := m.errors[OpWrite]; err != nil {
		return 0, storeError(string(OpWrite), A1(partition, rng), err)
	}
	existing, ok := m.partitions[partition]
	if !ok {
		return 0, storeError(string(OpWrite), A1(partition, rng), fmt.Errorf("unable to parse range: %s", A1(partition, rng)))
	}

	start := startRow(rng)
	for i, row := range rows {
		idx := start - 1 + i
		for len(existing) <= idx {
			existing = append(existing, nil)
		}
		existing[idx] = renderRow(row)
	}
	m.partitions[partition] = existing
	return len(rows), nil
}

// ClearRange implements Store. Every row from the range's start row onward
// is emptied.
func (m *MemoryStore) ClearRange(_ context.Context, partition, rng string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpClear, Partition: partition, Range: rng})
	if err := m.errors[OpClear]; err != nil {
		return storeError(string(OpClear), A1(partition, rng), err)
	}
	existing, ok := m.partitions[partition]
	if !ok {
		return storeError(string(OpClear), A1(partition, rng), fmt.Errorf("unable to parse range: %s", A1(partition, rng)))
	}
	start := startRow(rng)
	for i := start - 1; i < len(existing); i++ {
		existing[i] = nil
	}
	return nil
}

// CreatePartition implements Store.
func (m *MemoryStore) CreatePartition(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpCreate, Partition: name})
	if err := m.errors[OpCreate]; err != nil {
		return storeError(string(OpCreate), name, err)
	}
	if _, ok := m.partitions[name]; ok {
		return storeError(string(OpCreate), name, fmt.Errorf("a sheet with the name %q already exists", name))
	}
	m.partitions[name] = nil
	m.order = append(m.order, name)
	return nil
}

var startRowPattern = regexp.MustCompile(`^[A-Za-z]+(\d+)`)

// startRow returns the 1-based first row of an A1 range such as "A5:C".
// Open ranges like "A:C" start at row 1.
func startRow(rng string) int {
	match := startRowPattern.FindStringSubmatch(rng)
	if match == nil {
		return 1
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func renderRow(row []any) []any {
	out := make([]any, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func trimEmpty(rows [][]any) [][]any {
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}

func copyRows(rows [][]any) [][]any {
	if rows == nil {
		return nil
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		if row == nil {
			continue
		}
		out[i] = append([]any(nil), row...)
	}
	return out
}
