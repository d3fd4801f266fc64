package form

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

var (
	// ErrUnknownField is returned when an event names a field the schema does
	// not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrValueShape is returned when a list is assigned to a single-valued
	// field.
	ErrValueShape = errors.New("form: value shape does not match field")
)

// Form owns one FormState for its lifetime and applies change, blur and
// submit events to it. A Form is not safe for concurrent use.
type Form struct {
	schema      model.Schema
	rules       *validation.Ruleset
	state       *State
	mode        GateMode
	logger      *zap.Logger
	diagnostics io.Writer
	hooks       []SubmitHook
	newID       func() string
	now         func() time.Time
}

// New derives the ruleset for schema and mounts a fresh FormState.
func New(schema model.Schema, options ...Option) (*Form, error) {
	f := &Form{
		schema: schema,
		mode:   GateStrict,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}

	if f.rules == nil {
		rules, err := validation.Derive(schema)
		if err != nil {
			return nil, fmt.Errorf("form: %w", err)
		}
		f.rules = &rules
	}

	f.state = newState(schema)
	f.revalidate()
	return f, nil
}

// Schema returns the schema the form was mounted with.
func (f *Form) Schema() model.Schema {
	return f.schema
}

// Rules returns the derived ruleset.
func (f *Form) Rules() validation.Ruleset {
	return *f.rules
}

// Mode returns the configured gate mode.
func (f *Form) Mode() GateMode {
	return f.mode
}

// State returns a snapshot of the current FormState.
func (f *Form) State() *State {
	return f.state.clone()
}

// Change assigns value to name and recomputes every field's error.
// List-valued fields accept single values as one-element lists.
func (f *Form) Change(name string, value model.Value) error {
	field, ok := f.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	switch {
	case field.IsList() && !value.IsList():
		value = model.List(value.Items()...)
	case !field.IsList() && value.IsList():
		return fmt.Errorf("%w: %q expects a single value", ErrValueShape, name)
	}

	f.state.values[name] = value
	f.revalidate()
	return nil
}

// Toggle flips option in a checkbox group or multi-select.
func (f *Form) Toggle(name, option string) error {
	field, ok := f.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !field.IsList() {
		return fmt.Errorf("%w: %q is not a list field", ErrValueShape, name)
	}
	return f.Change(name, f.state.values[name].Toggle(option))
}

// Blur marks name as touched, which makes its error visible.
func (f *Form) Blur(name string) error {
	if _, ok := f.schema.Field(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.state.touched[name] = struct{}{}
	return nil
}

// TouchAll marks every field as touched.
func (f *Form) TouchAll() {
	for _, field := range f.schema.Fields {
		f.state.touched[field.Name] = struct{}{}
	}
}

// Value returns the current value of name.
func (f *Form) Value(name string) model.Value {
	return f.state.Value(name)
}

// Error returns the current error of name regardless of touched state.
func (f *Form) Error(name string) *validation.FieldError {
	return f.state.Error(name)
}

// VisibleError returns the message shown inline for name: the field's error
// once it has been touched, "" otherwise.
func (f *Form) VisibleError(name string) string {
	if !f.state.Touched(name) {
		return ""
	}
	if err := f.state.Error(name); err != nil {
		return err.Message
	}
	return ""
}

// Reset restores the initial values and clears touched flags.
func (f *Form) Reset() {
	f.state = newState(f.schema)
	f.revalidate()
}

func (f *Form) revalidate() {
	f.state.errors = f.rules.Validate(f.state.values)
}
