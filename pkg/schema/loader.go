package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem sets the fs.FS used for SourceFromFS locations.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources using the provided resty client.
func WithHTTPClient(client *resty.Client) Option {
	return func(l *Loader) {
		l.http = client
	}
}

// WithHTTPFallback enables URL sources using a default client bounded by
// timeout.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(l *Loader) {
		client := resty.New()
		if timeout > 0 {
			client.SetTimeout(timeout)
		}
		l.http = client
	}
}

// WithDecorators appends decorators that run after model.Defaults.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(l *Loader) {
		for _, decorator := range decorators {
			if decorator != nil {
				l.decorators = append(l.decorators, decorator)
			}
		}
	}
}

// Loader reads, decodes, decorates and validates field schemas. URL loading is
// disabled unless a client is configured, keeping the default offline.
type Loader struct {
	fs         fs.FS
	http       *resty.Client
	decorators []model.Decorator
}

// NewLoader constructs a Loader.
func NewLoader(options ...Option) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Fetch reads the raw document for src.
func (l *Loader) Fetch(ctx context.Context, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = readFile(src.Location())
	case SourceKindFS:
		data, err = l.readFS(src.Location())
	case SourceKindURL:
		data, err = l.readURL(ctx, src.Location())
	default:
		err = fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, err
	}
	return NewDocument(src, data)
}

// Load fetches src and returns a decorated, validated schema.
func (l *Loader) Load(ctx context.Context, src Source) (model.Schema, error) {
	doc, err := l.Fetch(ctx, src)
	if err != nil {
		return model.Schema{}, err
	}
	return l.Build(doc)
}

// Build decodes an already fetched document, applies model.Defaults plus the
// configured decorators and validates the result.
func (l *Loader) Build(doc Document) (model.Schema, error) {
	out, err := doc.Decode()
	if err != nil {
		return model.Schema{}, err
	}
	return l.Finalize(out)
}

// Finalize applies decorators and validation to a schema constructed in code.
func (l *Loader) Finalize(out model.Schema) (model.Schema, error) {
	decorators := append([]model.Decorator{model.Defaults()}, l.decorators...)
	for _, decorator := range decorators {
		if err := decorator.Decorate(&out); err != nil {
			return model.Schema{}, fmt.Errorf("schema: decorate: %w", err)
		}
	}
	if err := out.Validate(); err != nil {
		return model.Schema{}, fmt.Errorf("schema: invalid: %w", err)
	}
	return out, nil
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("schema: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("schema: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return data, nil
}

func (l *Loader) readFS(name string) ([]byte, error) {
	if l.fs == nil {
		return nil, errors.New("schema: filesystem is not configured")
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return data, nil
}

func (l *Loader) readURL(ctx context.Context, url string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("schema: http support disabled")
	}
	resp, err := l.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("schema: fetch %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("schema: fetch %s: unexpected status %s", url, resp.Status())
	}
	return resp.Body(), nil
}
