// Package dynform renders schema driven forms and gates their submissions.
//
// The root package wires the common path: load a field schema, mount a
// form.Form to track values and errors, and render it with the vanilla HTML
// renderer. The subpackages under pkg/ expose each stage on its own.
package dynform

import (
	"context"
	"time"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Schema aliases model.Schema for callers that only import the root package.
type Schema = model.Schema

// RenderOptions describes per-request values, errors and flash messages.
type RenderOptions = render.RenderOptions

// DefaultSchema returns the embedded sign-up schema.
func DefaultSchema() (Schema, error) {
	return schema.Default()
}

// LoadSchema loads a schema from a file path or http(s) URL. An empty
// location returns the embedded default schema.
func LoadSchema(ctx context.Context, location string) (Schema, error) {
	if location == "" {
		return schema.Default()
	}
	src, err := schema.ParseSource(location)
	if err != nil {
		return Schema{}, err
	}
	loader := schema.NewLoader(schema.WithHTTPFallback(30 * time.Second))
	return loader.Load(ctx, src)
}

// NewForm mounts a form for s.
func NewForm(s Schema, options ...form.Option) (*form.Form, error) {
	return form.New(s, options...)
}

// RenderHTML renders s with the vanilla renderer.
func RenderHTML(ctx context.Context, s Schema, opts RenderOptions, options ...vanilla.Option) ([]byte, error) {
	renderer, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, s, opts)
}

// RenderForm renders the current state of f: its values and the errors of
// touched fields.
func RenderForm(ctx context.Context, f *form.Form, options ...vanilla.Option) ([]byte, error) {
	return RenderHTML(ctx, f.Schema(), render.OptionsFromForm(f), options...)
}

// NewRegistry returns a renderer registry holding the vanilla HTML renderer
// (the default) and the interactive terminal renderer.
func NewRegistry() (*render.Registry, error) {
	html, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	terminal, err := tui.New()
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(html, terminal)
}
