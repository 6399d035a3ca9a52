package prompts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/expense-ai/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{ err error }

func (f failingSource) Read(context.Context, string) ([]byte, error) { return nil, f.err }

func TestRenderEmbedded(t *testing.T) {
	loader, err := NewLoader(context.Background(), "", testutil.DiscardLogger())
	require.NoError(t, err)
	defer func() { _ = loader.Close() }()

	for _, name := range []string{ExpenseParse, ExpenseAssistant} {
		t.Run(name, func(t *testing.T) {
			prompt, err := loader.Render(context.Background(), name, Data{Today: "2025-01-10"})
			require.NoError(t, err)
			assert.Contains(t, prompt, "Today is 2025-01-10.")
			assert.NotContains(t, prompt, "{{")
		})
	}

	prompt, err := loader.Render(context.Background(), ExpenseAssistant, Data{Today: "2025-01-10"})
	require.NoError(t, err)
	for _, tool := range []string{"getDate", "updateExpensesByYear", "getExpenses"} {
		assert.Contains(t, prompt, tool)
	}
}

func TestRenderDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ExpenseParse), []byte("  Custom parser for {{.Today}}\n"), 0o600))

	loader, err := NewLoader(context.Background(), dir, testutil.DiscardLogger())
	require.NoError(t, err)

	prompt, err := loader.Render(context.Background(), ExpenseParse, Data{Today: "2025-02-01"})
	require.NoError(t, err)
	assert.Equal(t, "Custom parser for 2025-02-01", prompt)

	// Templates absent from the directory fall back to the embedded copy.
	prompt, err = loader.Render(context.Background(), ExpenseAssistant, Data{Today: "2025-02-01"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "updateExpensesByYear")
}

func TestRenderErrors(t *testing.T) {
	logger := testutil.DiscardLogger()

	t.Run("source failure", func(t *testing.T) {
		loader := NewLoaderWithSource(failingSource{err: errors.New("permission denied")}, logger)
		_, err := loader.Render(context.Background(), ExpenseParse, Data{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("unknown template", func(t *testing.T) {
		loader := NewLoaderWithSource(nil, logger)
		_, err := loader.Render(context.Background(), "missing.template", Data{})
		require.Error(t, err)
	})

	t.Run("bad template syntax", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ExpenseParse), []byte("{{.Today"), 0o600))
		loader := NewLoaderWithSource(dirSource(dir), logger)
		_, err := loader.Render(context.Background(), ExpenseParse, Data{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse prompt")
	})

	t.Run("unknown field", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ExpenseParse), []byte("{{.Tomorrow}}"), 0o600))
		loader := NewLoaderWithSource(dirSource(dir), logger)
		_, err := loader.Render(context.Background(), ExpenseParse, Data{})
		require.Error(t, err)
	})
}

func TestNewLoaderLocations(t *testing.T) {
	logger := testutil.DiscardLogger()

	_, err := NewLoader(context.Background(), filepath.Join(t.TempDir(), "nope"), logger)
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = NewLoader(context.Background(), file, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")

	_, err = NewLoader(context.Background(), "gs://", logger)
	require.Error(t, err)
}

func TestParseGCSLocation(t *testing.T) {
	tests := []struct {
		location   string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{location: "gs://prompts", wantBucket: "prompts"},
		{location: "gs://prompts/", wantBucket: "prompts"},
		{location: "gs://prompts/expense/v2/", wantBucket: "prompts", wantPrefix: "expense/v2"},
		{location: "gs:///expense", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			bucket, prefix, err := parseGCSLocation(tt.location)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}
