package model

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError reports a structural problem with one field of a schema.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "model: " + e.Reason
	}
	return fmt.Sprintf("model: field %q: %s", e.Field, e.Reason)
}

var errNoFields = errors.New("model: schema declares no fields")

// Validate enforces the schema invariants. All problems are reported, joined
// with errors.Join, so authors can fix a document in one pass.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return errNoFields
	}

	var errs []error
	seen := make(map[string]struct{}, len(s.Fields))
	for idx, field := range s.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			errs = append(errs, &SchemaError{Reason: fmt.Sprintf("field #%d has no name", idx)})
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, &SchemaError{Field: name, Reason: "duplicate field name"})
		}
		seen[name] = struct{}{}
		errs = append(errs, validateField(field)...)
	}
	return errors.Join(errs...)
}

func validateField(field Field) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, &SchemaError{Field: field.Name, Reason: fmt.Sprintf(format, args...)})
	}

	if !field.Type.Known() {
		fail("unknown type %q", field.Type)
		return errs
	}

	if field.Type.HasOptions() {
		if len(field.Options) == 0 {
			fail("%s fields require at least one option", field.Type)
		}
		values := make(map[string]struct{}, len(field.Options))
		for _, option := range field.Options {
			if _, dup := values[option.Value]; dup {
				fail("duplicate option value %q", option.Value)
			}
			values[option.Value] = struct{}{}
		}
	} else if len(field.Options) > 0 {
		fail("%s fields do not accept options", field.Type)
	}

	if field.MultiValue != nil && *field.MultiValue && field.Type != FieldTypeCheckbox {
		fail("multiValue is only supported on checkbox fields")
	}
	if field.MultipleSelect && field.Type != FieldTypeSelect {
		fail("multipleSelect is only supported on select fields")
	}
	if len(field.FileFormatSupported) > 0 && field.Type != FieldTypeFile {
		fail("fileFormatSupported is only supported on file fields")
	}
	return errs
}
