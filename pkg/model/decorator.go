package model

import "strings"

// Decorator adjusts a schema after it has been decoded and before it is
// validated. Loaders run decorators in order.
type Decorator interface {
	Decorate(*Schema) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Schema) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(schema *Schema) error {
	return fn(schema)
}

// DefaultSubmitLabel is used when a schema does not name its submit button.
const DefaultSubmitLabel = "Submit"

// Defaults fills in the optional descriptor keys:
//   - labels fall back to the humanized field name
//   - checkbox groups get list semantics unless multiValue is set explicitly
//   - text/password placeholders read "Enter {label}", selects "Select {label}"
//   - accepted file extensions are lower-cased without a leading dot
func Defaults() Decorator {
	return DecoratorFunc(func(schema *Schema) error {
		if strings.TrimSpace(schema.SubmitLabel) == "" {
			schema.SubmitLabel = DefaultSubmitLabel
		}
		for idx := range schema.Fields {
			applyFieldDefaults(&schema.Fields[idx])
		}
		return nil
	})
}

func applyFieldDefaults(field *Field) {
	field.Name = strings.TrimSpace(field.Name)
	field.Type = FieldType(strings.ToLower(strings.TrimSpace(string(field.Type))))
	if strings.TrimSpace(field.Label) == "" {
		field.Label = Humanize(field.Name)
	}
	if field.Type == FieldTypeCheckbox && field.MultiValue == nil {
		field.MultiValue = Bool(true)
	}
	if field.Placeholder == "" {
		switch field.Type {
		case FieldTypeText, FieldTypePassword:
			field.Placeholder = "Enter " + field.Label
		case FieldTypeSelect:
			field.Placeholder = "Select " + field.Label
		}
	}
	if len(field.FileFormatSupported) > 0 {
		formats := make([]string, 0, len(field.FileFormatSupported))
		for _, format := range field.FileFormatSupported {
			format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
			if format != "" {
				formats = append(formats, format)
			}
		}
		field.FileFormatSupported = formats
	}
}
