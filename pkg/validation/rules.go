package validation

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
)

type check func(model.Value) *FieldError

// Rule validates a single field. The zero Rule accepts everything.
type Rule struct {
	field   model.Field
	pattern *regexp.Regexp
	checks  []check
}

// Field returns the descriptor the rule was derived from.
func (r Rule) Field() model.Field {
	return r.field
}

// Pattern returns the compiled regex, or nil when the field is not
// pattern-validated.
func (r Rule) Pattern() *regexp.Regexp {
	return r.pattern
}

// Check returns the first failure for value, or nil.
func (r Rule) Check(value model.Value) *FieldError {
	for _, fn := range r.checks {
		if err := fn(value); err != nil {
			return err
		}
	}
	return nil
}

// Ruleset maps field names to their rules, in schema order.
type Ruleset struct {
	order []string
	rules map[string]Rule
}

// Derive builds the ruleset for schema. It fails when a pattern that will be
// enforced does not compile.
func Derive(schema model.Schema) (Ruleset, error) {
	set := Ruleset{
		order: make([]string, 0, len(schema.Fields)),
		rules: make(map[string]Rule, len(schema.Fields)),
	}
	for _, field := range schema.Fields {
		rule, err := deriveRule(field)
		if err != nil {
			return Ruleset{}, err
		}
		set.order = append(set.order, field.Name)
		set.rules[field.Name] = rule
	}
	return set, nil
}

// MustDerive panics if Derive fails. Intended for static schemas.
func MustDerive(schema model.Schema) Ruleset {
	set, err := Derive(schema)
	if err != nil {
		panic(err)
	}
	return set
}

// Rule returns the rule for name.
func (s Ruleset) Rule(name string) (Rule, bool) {
	rule, ok := s.rules[name]
	return rule, ok
}

// Names returns the field names covered by the ruleset in schema order.
func (s Ruleset) Names() []string {
	return slices.Clone(s.order)
}

// Check validates a single field by name. Unknown names pass.
func (s Ruleset) Check(name string, value model.Value) *FieldError {
	rule, ok := s.rules[name]
	if !ok {
		return nil
	}
	return rule.Check(value)
}

// Validate checks every field. Missing entries in values are treated as the
// field's empty value. The result only holds failing fields.
func (s Ruleset) Validate(values map[string]model.Value) map[string]*FieldError {
	out := make(map[string]*FieldError)
	for _, name := range s.order {
		rule := s.rules[name]
		value, ok := values[name]
		if !ok {
			value = rule.field.EmptyValue()
		}
		if err := rule.Check(value); err != nil {
			out[name] = err
		}
	}
	return out
}

func deriveRule(field model.Field) (Rule, error) {
	rule := Rule{field: field}

	if field.Required {
		rule.checks = append(rule.checks, requiredCheck(field))
	}

	switch {
	case field.Type == model.FieldTypePassword:
		// Strength rules are declared on the schema but never enforced.
	case field.Type == model.FieldTypeRadio:
		rule.checks = append(rule.checks, optionCheck(field, RequiredMessage(field)))
	case field.Type == model.FieldTypeCheckbox && field.IsMultiValue():
		rule.checks = append(rule.checks, nonEmptySelectionCheck(field), optionCheck(field, InvalidMessage(field)))
	case strings.TrimSpace(field.Regex) != "":
		pattern, err := regexp.Compile(field.Regex)
		if err != nil {
			return Rule{}, fmt.Errorf("validation: field %q: compile regex: %w", field.Name, err)
		}
		rule.pattern = pattern
		rule.checks = append(rule.checks, patternCheck(field, pattern))
	}

	switch field.Type {
	case model.FieldTypeSelect:
		rule.checks = append(rule.checks, optionCheck(field, RequiredMessage(field)))
	case model.FieldTypeCheckbox:
		if !field.IsMultiValue() {
			rule.checks = append(rule.checks, optionCheck(field, InvalidMessage(field)))
		}
	case model.FieldTypeFile:
		if len(field.FileFormatSupported) > 0 {
			rule.checks = append(rule.checks, fileFormatCheck(field))
		}
	}

	return rule, nil
}

// RequiredMessage is the message reported when a required field is empty.
func RequiredMessage(field model.Field) string {
	return field.Label + " is required"
}

// InvalidMessage is the generic message for a value that fails its rule.
func InvalidMessage(field model.Field) string {
	return field.Label + " is not valid"
}

func requiredCheck(field model.Field) check {
	return func(value model.Value) *FieldError {
		if !value.Empty() {
			return nil
		}
		return &FieldError{Field: field.Name, Kind: KindMissingRequiredValue, Message: RequiredMessage(field)}
	}
}

// optionCheck rejects values that are not declared options. Empty values are
// left to the required-check.
func optionCheck(field model.Field, message string) check {
	return func(value model.Value) *FieldError {
		for _, item := range value.Items() {
			if !field.HasOption(item) {
				return &FieldError{Field: field.Name, Kind: KindInvalidOptionSelection, Message: message}
			}
		}
		return nil
	}
}

func nonEmptySelectionCheck(field model.Field) check {
	return func(value model.Value) *FieldError {
		if len(value.Items()) > 0 {
			return nil
		}
		return &FieldError{Field: field.Name, Kind: KindEmptyMultiSelection, Message: RequiredMessage(field)}
	}
}

// PatternMessage is the message reported on a regex mismatch: the configured
// regexMessage entries joined with "; ", or the generic invalid message.
func PatternMessage(field model.Field) string {
	if joined := field.RegexMessage.Join("; "); joined != "" {
		return joined
	}
	return InvalidMessage(field)
}

func patternCheck(field model.Field, pattern *regexp.Regexp) check {
	message := PatternMessage(field)
	return func(value model.Value) *FieldError {
		if value.Empty() {
			return nil
		}
		for _, item := range value.Items() {
			if !pattern.MatchString(item) {
				return &FieldError{Field: field.Name, Kind: KindPatternMismatch, Message: message}
			}
		}
		return nil
	}
}

// FileFormatMessage is the message reported for a file whose extension is not
// listed in fileFormatSupported.
func FileFormatMessage(field model.Field) string {
	return fmt.Sprintf("%s must be one of: %s", field.Label, strings.Join(field.FileFormatSupported, ", "))
}

func fileFormatCheck(field model.Field) check {
	accepted := make(map[string]struct{}, len(field.FileFormatSupported))
	for _, format := range field.FileFormatSupported {
		accepted[normalizeExtension(format)] = struct{}{}
	}
	message := FileFormatMessage(field)
	return func(value model.Value) *FieldError {
		for _, name := range value.Items() {
			if _, ok := accepted[normalizeExtension(path.Ext(name))]; !ok {
				return &FieldError{Field: field.Name, Kind: KindUnsupportedFileFormat, Message: message}
			}
		}
		return nil
	}
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
