package prompts

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"cloud.google.com/go/storage"
)

// Template names shipped with the binary.
const (
	ExpenseParse     = "system_expense.template"
	ExpenseAssistant = "system_expense_with_tools.template"
)

const gcsScheme = "gs://"

//go:embed templates/*.template
var embedded embed.FS

// Data is the value each template is executed with.
type Data struct {
	Today string
}

// Source reads a named template. Missing templates must wrap fs.ErrNotExist.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// Loader renders system prompts. Templates are read on every call so edits
// to an override location take effect without a restart.
type Loader struct {
	source Source
	logger *slog.Logger
	closer io.Closer
}

// NewLoader returns a loader for location, which may be empty (embedded
// templates only), a local directory, or gs://bucket/prefix.
func NewLoader(ctx context.Context, location string, logger *slog.Logger) (*Loader, error) {
	location = strings.TrimSpace(location)

	switch {
	case location == "":
		return NewLoaderWithSource(nil, logger), nil
	case strings.HasPrefix(location, gcsScheme):
		bucket, prefix, err := parseGCSLocation(location)
		if err != nil {
			return nil, err
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		loader := NewLoaderWithSource(&gcsSource{bucket: client.Bucket(bucket), prefix: prefix}, logger)
		loader.closer = client
		return loader, nil
	default:
		info, err := os.Stat(location)
		if err != nil {
			return nil, fmt.Errorf("prompt directory %s: %w", location, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("prompt location %s is not a directory", location)
		}
		return NewLoaderWithSource(dirSource(location), logger), nil
	}
}

// NewLoaderWithSource returns a loader that consults source before the
// embedded templates. A nil source uses the embedded templates only.
func NewLoaderWithSource(source Source, logger *slog.Logger) *Loader {
	return &Loader{source: source, logger: logger}
}

// Render executes the named template with data.
func (l *Loader) Render(ctx context.Context, name string, data Data) (string, error) {
	raw, err := l.read(ctx, name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Close releases the storage client, if any.
func (l *Loader) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Loader) read(ctx context.Context, name string) ([]byte, error) {
	if l.source != nil {
		raw, err := l.source.Read(ctx, name)
		switch {
		case err == nil:
			l.logger.Debug("Loaded prompt override", "template", name)
			return raw, nil
		case errors.Is(err, fs.ErrNotExist):
			l.logger.Debug("No prompt override, using embedded template", "template", name)
		default:
			return nil, fmt.Errorf("read prompt %s: %w", name, err)
		}
	}

	raw, err := embedded.ReadFile(path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", name, err)
	}
	return raw, nil
}

type dirSource string

func (d dirSource) Read(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), name))
}

type gcsSource struct {
	bucket *storage.BucketHandle
	prefix string
}

func (g *gcsSource) Read(ctx context.Context, name string) ([]byte, error) {
	object := path.Join(g.prefix, name)

	r, err := g.bucket.Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", object, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

// parseGCSLocation splits gs://bucket/some/prefix into bucket and prefix.
func parseGCSLocation(location string) (string, string, error) {
	rest := strings.TrimPrefix(location, gcsScheme)
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid GCS location %q: missing bucket", location)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}
