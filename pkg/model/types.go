package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType is the closed set of controls a schema can declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypePassword FieldType = "password"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
	FieldTypeFile     FieldType = "file"
)

// FieldTypes lists every supported type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypePassword,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeSelect,
		FieldTypeFile,
	}
}

// Known reports whether the type is part of the supported set.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type must declare options.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeRadio, FieldTypeCheckbox, FieldTypeSelect:
		return true
	default:
		return false
	}
}

// Option is a single {label, value} choice offered by radio, checkbox and
// select fields.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Messages holds one or more human readable strings. It decodes from either a
// single string or a list so schema authors can write whichever reads better.
type Messages []string

// UnmarshalJSON accepts a string or an array of strings.
func (m *Messages) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = normalizeMessages([]string{single})
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("model: messages must be a string or a list of strings: %w", err)
	}
	*m = normalizeMessages(list)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence node.
func (m *Messages) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*m = normalizeMessages([]string{node.Value})
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("model: decode messages: %w", err)
		}
		*m = normalizeMessages(list)
		return nil
	default:
		return fmt.Errorf("model: messages must be a string or a list of strings (line %d)", node.Line)
	}
}

// Join concatenates the messages with sep, returning "" when empty.
func (m Messages) Join(sep string) string {
	return strings.Join(m, sep)
}

func normalizeMessages(in []string) Messages {
	out := make(Messages, 0, len(in))
	for _, msg := range in {
		if trimmed := strings.TrimSpace(msg); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Field describes one control of the form. Struct tags mirror the schema
// document keys so loaders and exporters share a single shape.
type Field struct {
	Name                string    `json:"name" yaml:"name"`
	Label               string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type                FieldType `json:"type" yaml:"type"`
	Required            bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Regex               string    `json:"regex,omitempty" yaml:"regex,omitempty"`
	RegexMessage        Messages  `json:"regexMessage,omitempty" yaml:"regexMessage,omitempty"`
	Options             []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	FileFormatSupported []string  `json:"fileFormatSupported,omitempty" yaml:"fileFormatSupported,omitempty"`
	// MultiValue gives a checkbox group list semantics: the value is the set
	// of checked option values and at least one must be selected.
	MultiValue *bool `json:"multiValue,omitempty" yaml:"multiValue,omitempty"`
	// MultipleSelect renders a select as a multi-select list.
	MultipleSelect bool   `json:"multipleSelect,omitempty" yaml:"multipleSelect,omitempty"`
	Placeholder    string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// IsMultiValue reports whether the checkbox group carries list semantics.
func (f Field) IsMultiValue() bool {
	return f.Type == FieldTypeCheckbox && f.MultiValue != nil && *f.MultiValue
}

// IsList reports whether the field holds a list value.
func (f Field) IsList() bool {
	switch f.Type {
	case FieldTypeCheckbox:
		return true
	case FieldTypeSelect:
		return f.MultipleSelect
	default:
		return false
	}
}

// OptionValues returns the declared option values in order.
func (f Field) OptionValues() []string {
	if len(f.Options) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Options))
	for _, option := range f.Options {
		out = append(out, option.Value)
	}
	return out
}

// HasOption reports whether value is one of the declared option values.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options {
		if option.Value == value {
			return true
		}
	}
	return false
}

// EmptyValue returns the initial value for the field: an empty list for
// list-valued fields and an empty string otherwise.
func (f Field) EmptyValue() Value {
	if f.IsList() {
		return List()
	}
	return Text("")
}

// Schema is the ordered sequence of fields plus a little form-level chrome.
type Schema struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	SubmitLabel string  `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.Name)
	}
	return out
}

// InitialValues builds the empty value map a freshly mounted form starts with.
func (s Schema) InitialValues() map[string]Value {
	out := make(map[string]Value, len(s.Fields))
	for _, field := range s.Fields {
		out[field.Name] = field.EmptyValue()
	}
	return out
}

// Bool returns a pointer to b, for the optional boolean descriptor keys.
func Bool(b bool) *bool {
	return &b
}
