package components

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/model"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry constructs a registry with one template-backed component
// per supported field type.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, fieldType := range model.FieldTypes() {
		name := string(fieldType)
		registry.MustRegister(name, Descriptor{
			Renderer: templateComponentRenderer(templatePrefix + name + ".tmpl"),
		})
	}
	return registry
}

func templateComponentRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		rendered, err := data.Template.RenderTemplate(templateName, map[string]any{
			"field": data.View,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q for field %q: %w", templateName, field.Name, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
