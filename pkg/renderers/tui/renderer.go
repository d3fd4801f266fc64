package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

const noneOption = "(none)"

// Renderer implements render.Renderer as an interactive terminal session: it
// prompts for every field, re-prompts while the field is invalid, then runs
// the submission gate and returns the accepted values.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	formOptions  []form.Option
	maxAttempts  int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "✗ ", InfoPrefix: "✓ "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render runs one session for schema. opts.Values prefill the prompts and
// opts.RevealPasswords echoes password input.
func (r *Renderer) Render(ctx context.Context, schema model.Schema, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var accepted *form.Submission
	formOptions := append(slices.Clone(r.formOptions), form.WithSubmitHook(func(_ context.Context, s form.Submission) error {
		accepted = &s
		return nil
	}))
	f, err := form.New(schema, formOptions...)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	for name, value := range opts.Values {
		if err := f.Change(name, value); err != nil {
			return nil, fmt.Errorf("tui: prefill: %w", err)
		}
	}

	pending := schema.Fields
	for {
		for _, field := range pending {
			if err := r.promptField(ctx, f, field, opts.RevealPasswords); err != nil {
				return nil, err
			}
		}

		outcome := f.Submit(ctx)
		if outcome.Accepted {
			if err := r.driver.Info(ctx, r.theme.InfoPrefix+outcome.Message); err != nil {
				return nil, err
			}
			return r.serialize(schema, *accepted)
		}

		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+outcome.Message); err != nil {
			return nil, err
		}
		pending = r.failing(ctx, f)
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Revise the highlighted fields?", Default: true})
		if err != nil {
			return nil, err
		}
		if !retry {
			return nil, ErrRejected
		}
		if len(pending) == 0 {
			pending = schema.Fields
		}
	}
}

// failing prints the visible error of every invalid field and returns those
// fields in schema order.
func (r *Renderer) failing(ctx context.Context, f *form.Form) []model.Field {
	var out []model.Field
	for _, field := range f.Schema().Fields {
		if msg := f.VisibleError(field.Name); msg != "" {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, field.Label, msg))
			out = append(out, field)
		}
	}
	return out
}

func (r *Renderer) promptField(ctx context.Context, f *form.Form, field model.Field, reveal bool) error {
	for attempt := 1; ; attempt++ {
		value, err := r.ask(ctx, f, field, reveal)
		if err != nil {
			return err
		}
		if err := f.Change(field.Name, value); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		if err := f.Blur(field.Name); err != nil {
			return fmt.Errorf("tui: %w", err)
		}

		msg := f.VisibleError(field.Name)
		if msg == "" {
			return nil
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name)
		}
	}
}

func (r *Renderer) ask(ctx context.Context, f *form.Form, field model.Field, reveal bool) (model.Value, error) {
	current := f.Value(field.Name)
	message := field.Label
	if field.Required {
		message += " *"
	}

	switch {
	case field.Type == model.FieldTypePassword && !reveal:
		answer, err := r.driver.Password(ctx, InputConfig{Message: message, Help: field.Placeholder})
		return model.Text(answer), err

	case field.IsList():
		labels := optionLabels(field)
		var defaults []int
		for idx, option := range field.Options {
			if current.Contains(option.Value) {
				defaults = append(defaults, idx)
			}
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults, Help: field.Placeholder})
		if err != nil {
			return model.Value{}, err
		}
		values := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				values = append(values, field.Options[idx].Value)
			}
		}
		return model.List(values...), nil

	case field.Type.HasOptions():
		labels := optionLabels(field)
		offset := 0
		if !field.Required {
			labels = append([]string{noneOption}, labels...)
			offset = 1
		}
		def := -1
		for idx, option := range field.Options {
			if current.Contains(option.Value) {
				def = idx + offset
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: def, Help: field.Placeholder})
		if err != nil {
			return model.Value{}, err
		}
		idx -= offset
		if idx < 0 || idx >= len(field.Options) {
			return model.Text(""), nil
		}
		return model.Text(field.Options[idx].Value), nil

	case field.Type == model.FieldTypeFile:
		help := "Path to the file"
		if len(field.FileFormatSupported) > 0 {
			help += " (" + strings.Join(field.FileFormatSupported, ", ") + ")"
		}
		answer, err := r.driver.Input(ctx, InputConfig{Message: message, Default: current.String(), Help: help})
		if err != nil {
			return model.Value{}, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return model.Text(""), nil
		}
		return model.Text(filepath.Base(answer)), nil

	default:
		answer, err := r.driver.Input(ctx, InputConfig{Message: message, Default: current.String(), Help: field.Placeholder})
		return model.Text(answer), err
	}
}

func (r *Renderer) serialize(schema model.Schema, submission form.Submission) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		values := url.Values{}
		for _, field := range schema.Fields {
			value := submission.Values[field.Name]
			if value.IsList() {
				for _, item := range value.Items() {
					values.Add(field.Name, item)
				}
				continue
			}
			values.Set(field.Name, value.String())
		}
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, field := range schema.Fields {
			fmt.Fprintf(&b, "%s=%s\n", field.Name, submission.Values[field.Name].String())
		}
		return []byte(b.String()), nil
	default:
		return submission.Payload, nil
	}
}

func optionLabels(field model.Field) []string {
	labels := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		labels = append(labels, option.Label)
	}
	return labels
}
