package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-dynform/pkg/validation"
)

func (r *Renderer) renderField(field model.Field, rules validation.Ruleset, options render.RenderOptions) (string, error) {
	descriptor, ok := r.registry.Descriptor(string(field.Type))
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", field.Type, field.Name)
	}

	in := components.ViewInput{
		Field:  field,
		Value:  options.Value(field),
		Error:  options.Error(field.Name),
		Reveal: options.RevealPasswords,
	}
	if rule, ok := rules.Rule(field.Name); ok && rule.Pattern() != nil {
		in.Pattern = rule.Pattern().String()
	}
	view := r.views.Build(in)

	var control bytes.Buffer
	data := components.ComponentData{Template: r.templates, View: view}
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", descriptor.Name, field.Name, err)
	}

	return buildFieldMarkup(view, control.String()), nil
}

// buildFieldMarkup wraps a control with its label and error slot. The wrapper
// carries the data attributes the browser runtime validates with.
func buildFieldMarkup(view components.FieldView, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 512)

	builder.WriteString(`  <div class="`)
	builder.WriteString(string(ClassField))
	builder.WriteString(` grid gap-2"`)
	writeAttr(&builder, "data-dynform-field", view.Name)
	writeAttr(&builder, "data-dynform-type", view.Type)
	if view.Required {
		writeAttr(&builder, "data-dynform-required", "true")
	}
	if view.MultiValue {
		writeAttr(&builder, "data-dynform-multi", "true")
	}
	if view.Pattern != "" {
		writeAttr(&builder, "data-dynform-pattern", view.Pattern)
	}
	if view.Accept != "" {
		writeAttr(&builder, "data-dynform-accept", view.Accept)
		writeAttr(&builder, "data-dynform-format-message", view.FormatMessage)
	}
	writeAttr(&builder, "data-dynform-required-message", view.RequiredMessage)
	writeAttr(&builder, "data-dynform-invalid-message", view.InvalidMessage)
	if view.Invalid {
		builder.WriteString(` data-dynform-touched`)
	}
	builder.WriteString(">\n")

	if labelTargetsControl(view.Type) {
		builder.WriteString(`    <label for="`)
		builder.WriteString(html.EscapeString(view.ID))
		builder.WriteString(`"`)
	} else {
		builder.WriteString(`    <span`)
	}
	writeAttr(&builder, "id", view.ID+"-label")
	builder.WriteString(` class="`)
	builder.WriteString(string(ClassLabel))
	builder.WriteString(` text-sm font-medium text-gray-900">`)
	builder.WriteString(view.Label)
	if view.Required {
		builder.WriteString(` <span class="text-red-500">*</span>`)
	}
	if labelTargetsControl(view.Type) {
		builder.WriteString("</label>\n")
	} else {
		builder.WriteString("</span>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	builder.WriteString(`    <p`)
	writeAttr(&builder, "id", view.ID+"-error")
	builder.WriteString(` class="`)
	builder.WriteString(string(ClassError))
	builder.WriteString(` text-sm text-red-600"`)
	writeAttr(&builder, "data-dynform-error", view.Name)
	if view.ErrorText == "" {
		builder.WriteString(` hidden`)
	}
	builder.WriteString(`>`)
	builder.WriteString(html.EscapeString(view.ErrorText))
	builder.WriteString("</p>\n")

	builder.WriteString("  </div>\n")
	return builder.String()
}

func writeAttr(builder *strings.Builder, name, value string) {
	builder.WriteByte(' ')
	builder.WriteString(name)
	builder.WriteString(`="`)
	builder.WriteString(html.EscapeString(value))
	builder.WriteByte('"')
}

// labelTargetsControl reports whether the field has a single control a
// <label for> can point at. Option groups get a plain caption instead.
func labelTargetsControl(fieldType string) bool {
	switch model.FieldType(fieldType) {
	case model.FieldTypeRadio, model.FieldTypeCheckbox:
		return false
	default:
		return true
	}
}
