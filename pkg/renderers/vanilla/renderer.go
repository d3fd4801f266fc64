package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynform/pkg/render/template"
	gotemplate "github.com/goliatone/go-dynform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// Name is the registry name of the vanilla renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	policy           *bluemonday.Policy
	document         bool
	runtimeURL       string
	stylesheet       string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the per-type component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithSanitizer overrides the bluemonday policy applied to labels.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithDocument wraps the form in a full HTML page that loads the runtime
// script from runtimeURL. An empty runtimeURL omits the script.
func WithDocument(runtimeURL string) Option {
	return func(cfg *config) {
		cfg.document = true
		cfg.runtimeURL = strings.TrimSpace(runtimeURL)
	}
}

// WithStylesheet links an extra stylesheet from the document head.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(href)
	}
}

// Renderer renders a schema to HTML, dispatching every field to the component
// registered for its type.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	registry   *components.Registry
	views      *components.ViewBuilder
	document   bool
	runtimeURL string
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:  renderer,
		registry:   cfg.registry,
		views:      components.NewViewBuilder(cfg.policy),
		document:   cfg.document,
		runtimeURL: cfg.runtimeURL,
		stylesheet: cfg.stylesheet,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup for schema, reflecting the values, visible
// errors and flash carried by options.
func (r *Renderer) Render(ctx context.Context, schema model.Schema, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	rules, err := validation.Derive(schema)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	fields := make([]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		markup, err := r.renderField(field, rules, options)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		fields = append(fields, markup)
	}

	hidden := options.HiddenFields
	if schema.ID != "" {
		hidden = render.MergeHiddenFields(hidden, render.FormID(schema.ID))
	}

	formHTML, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form": formView(schema, options, fields, render.SortedHiddenFields(hidden)),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	if !r.document {
		return []byte(formHTML), nil
	}

	title := schema.Title
	if title == "" {
		title = model.DefaultSubmitLabel
	}
	page, err := r.templates.RenderTemplate("templates/page.tmpl", map[string]any{
		"page": map[string]any{
			"title":      title,
			"form":       formHTML,
			"runtime":    r.runtimeURL,
			"stylesheet": r.stylesheet,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return []byte(page), nil
}

func formView(schema model.Schema, options render.RenderOptions, fields []string, hidden []render.HiddenField) map[string]any {
	id := schema.ID
	if id == "" {
		id = "form"
	}
	submit := schema.SubmitLabel
	if submit == "" {
		submit = model.DefaultSubmitLabel
	}

	hiddenViews := make([]map[string]string, 0, len(hidden))
	for _, field := range hidden {
		hiddenViews = append(hiddenViews, map[string]string{"name": field.Name, "value": field.Value})
	}

	view := map[string]any{
		"id":            id,
		"dom_id":        "dynform-" + id,
		"class":         string(ClassForm),
		"actions_class": string(ClassActions),
		"title":         schema.Title,
		"action":        options.Action,
		"submit_label":  submit,
		"hidden":        hiddenViews,
		"fields":        fields,
	}
	if flash := options.Flash; flash != nil && flash.Message != "" {
		view["flash"] = map[string]string{
			"kind":    string(flash.Kind),
			"message": flash.Message,
			"classes": flashClasses[string(flash.Kind)],
		}
	}
	return view
}
