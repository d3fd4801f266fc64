package render

import (
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// FlashKind distinguishes acknowledgments from rejections.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is the form-level message shown after a submission attempt.
type Flash struct {
	Kind    FlashKind
	Message string
}

// FlashFromOutcome maps a gate outcome to the flash the renderer displays.
func FlashFromOutcome(outcome form.Outcome) *Flash {
	if outcome.Message == "" {
		return nil
	}
	kind := FlashError
	if outcome.Accepted {
		kind = FlashSuccess
	}
	return &Flash{Kind: kind, Message: outcome.Message}
}

// RenderOptions describe per-request data renderers use to reflect the
// FormState without owning it.
type RenderOptions struct {
	// Action is the form's submit target. Empty posts back to the current URL.
	Action string
	// Values pre-populates controls. Missing names render their empty value.
	Values map[string]model.Value
	// Errors holds the visible failures, keyed by field name. Only touched
	// fields should be present.
	Errors map[string]*validation.FieldError
	// Flash is the acknowledgment or rejection message, if any.
	Flash *Flash
	// RevealPasswords sets the initial state of password visibility toggles.
	RevealPasswords bool
	// HiddenFields are emitted as hidden inputs ahead of the visible controls.
	HiddenFields map[string]string
}

// OptionsFromForm snapshots the values and visible errors of f.
func OptionsFromForm(f *form.Form) RenderOptions {
	state := f.State()
	opts := RenderOptions{Values: state.Values()}
	for _, name := range state.TouchedNames() {
		if err := state.Error(name); err != nil {
			if opts.Errors == nil {
				opts.Errors = make(map[string]*validation.FieldError)
			}
			opts.Errors[name] = err
		}
	}
	return opts
}

// Value returns the value for name or the field's empty value.
func (o RenderOptions) Value(field model.Field) model.Value {
	if value, ok := o.Values[field.Name]; ok {
		return value
	}
	return field.EmptyValue()
}

// Error returns the visible failure for name, or nil.
func (o RenderOptions) Error(name string) *validation.FieldError {
	return o.Errors[name]
}
