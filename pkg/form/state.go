package form

import (
	"maps"
	"slices"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// State is the mutable FormState: current values, touched fields and the
// validation errors recomputed after every change.
type State struct {
	values  map[string]model.Value
	touched map[string]struct{}
	errors  map[string]*validation.FieldError
}

func newState(schema model.Schema) *State {
	return &State{
		values:  schema.InitialValues(),
		touched: make(map[string]struct{}),
		errors:  make(map[string]*validation.FieldError),
	}
}

// Value returns the current value of name.
func (s *State) Value(name string) model.Value {
	if s == nil {
		return model.Value{}
	}
	return s.values[name]
}

// Values returns a copy of the value map.
func (s *State) Values() map[string]model.Value {
	if s == nil {
		return nil
	}
	return maps.Clone(s.values)
}

// Touched reports whether the user interacted with name.
func (s *State) Touched(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.touched[name]
	return ok
}

// TouchedNames returns the touched field names, sorted.
func (s *State) TouchedNames() []string {
	if s == nil {
		return nil
	}
	names := slices.Collect(maps.Keys(s.touched))
	slices.Sort(names)
	return names
}

// Error returns the current validation failure for name, or nil.
func (s *State) Error(name string) *validation.FieldError {
	if s == nil {
		return nil
	}
	return s.errors[name]
}

// Errors returns name → message for every failing field, touched or not.
func (s *State) Errors() map[string]string {
	if s == nil {
		return nil
	}
	return validation.Messages(s.errors)
}

// VisibleErrors returns name → message for failing fields the user touched.
func (s *State) VisibleErrors() map[string]string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	out := make(map[string]string)
	for name, err := range s.errors {
		if _, ok := s.touched[name]; ok && err != nil {
			out[name] = err.Message
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Valid reports whether no field currently fails validation.
func (s *State) Valid() bool {
	return s == nil || len(s.errors) == 0
}

func (s *State) clone() *State {
	out := &State{
		values:  maps.Clone(s.values),
		touched: maps.Clone(s.touched),
		errors:  maps.Clone(s.errors),
	}
	return out
}
