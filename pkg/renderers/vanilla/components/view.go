package components

import (
	"html"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// PasswordErrorText replaces every password error shown inline.
const PasswordErrorText = "Password is incorrect"

const (
	controlClass = "block w-full rounded-lg border border-gray-300 px-3 py-2 text-sm"
	invalidClass = "border-red-500"
)

// FieldView is the template payload for one field. Label and option labels
// are already sanitized and must be emitted unescaped.
type FieldView struct {
	Name        string       `json:"name"`
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder,omitempty"`
	Required    bool         `json:"required"`
	Pattern     string       `json:"pattern,omitempty"`
	Value       string       `json:"value,omitempty"`
	Options     []OptionView `json:"options,omitempty"`
	Multiple    bool         `json:"multiple,omitempty"`
	Accept      string       `json:"accept,omitempty"`
	Reveal      bool         `json:"reveal,omitempty"`
	Invalid     bool         `json:"invalid"`
	Classes     string       `json:"classes"`

	// Runtime contract: messages and flags the browser script validates with.
	MultiValue      bool   `json:"multi_value,omitempty"`
	RequiredMessage string `json:"required_message"`
	InvalidMessage  string `json:"invalid_message"`
	FormatMessage   string `json:"format_message,omitempty"`
	ErrorText       string `json:"error_text,omitempty"`
}

// OptionView is a single radio, checkbox or select choice.
type OptionView struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
}

// ViewInput is what the vanilla renderer knows about a field at render time.
type ViewInput struct {
	Field   model.Field
	Value   model.Value
	Error   *validation.FieldError
	Pattern string
	Reveal  bool
}

// ViewBuilder turns render input into sanitized field views.
type ViewBuilder struct {
	policy *bluemonday.Policy
}

// NewViewBuilder returns a builder sanitizing labels with policy, or with
// bluemonday's strict policy when policy is nil.
func NewViewBuilder(policy *bluemonday.Policy) *ViewBuilder {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	return &ViewBuilder{policy: policy}
}

// Sanitize strips markup from user supplied text.
func (b *ViewBuilder) Sanitize(text string) string {
	return b.policy.Sanitize(text)
}

// Build assembles the view for in.
func (b *ViewBuilder) Build(in ViewInput) FieldView {
	field := in.Field
	label := b.Sanitize(field.Label)
	// Messages are built from the sanitized label and escaped on output.
	field.Label = html.UnescapeString(label)

	view := FieldView{
		Name:            field.Name,
		ID:              ControlID(field.Name),
		Type:            string(field.Type),
		Label:           label,
		Placeholder:     field.Placeholder,
		Required:        field.Required,
		Pattern:         in.Pattern,
		Multiple:        field.Type == model.FieldTypeSelect && field.MultipleSelect,
		Invalid:         in.Error != nil,
		RequiredMessage: validation.RequiredMessage(field),
		InvalidMessage:  validation.PatternMessage(field),
	}

	switch field.Type {
	case model.FieldTypePassword:
		view.Reveal = in.Reveal
		view.RequiredMessage = PasswordErrorText
		view.InvalidMessage = PasswordErrorText
	case model.FieldTypeCheckbox:
		if field.IsMultiValue() {
			view.MultiValue = true
			view.RequiredMessage = ChooseAtLeastOne(field.Label)
		}
	case model.FieldTypeFile:
		view.Accept = acceptList(field.FileFormatSupported)
		if view.Accept != "" {
			view.FormatMessage = validation.FileFormatMessage(field)
		}
	}

	if !in.Value.IsList() && field.Type != model.FieldTypePassword && field.Type != model.FieldTypeFile {
		view.Value = in.Value.String()
	}
	for idx, option := range field.Options {
		view.Options = append(view.Options, OptionView{
			ID:      OptionID(field.Name, idx),
			Label:   b.Sanitize(option.Label),
			Value:   option.Value,
			Checked: in.Value.Contains(option.Value),
		})
	}

	view.Classes = controlClass
	if view.Invalid {
		view.Classes += " " + invalidClass
		view.ErrorText = errorText(field, in.Error)
	}
	return view
}

// ChooseAtLeastOne is the inline message of an empty multi-value checkbox
// group.
func ChooseAtLeastOne(label string) string {
	return "Choose at least one " + lowerFirst(strings.TrimSpace(label))
}

// ControlID is the DOM id of a field's control.
func ControlID(name string) string {
	return "df-" + strings.TrimSpace(name)
}

// OptionID is the DOM id of the idx-th option of a field.
func OptionID(name string, idx int) string {
	return ControlID(name) + "-" + strconv.Itoa(idx)
}

func errorText(field model.Field, err *validation.FieldError) string {
	switch {
	case err == nil:
		return ""
	case field.Type == model.FieldTypePassword:
		return PasswordErrorText
	case err.Kind == validation.KindEmptyMultiSelection:
		return ChooseAtLeastOne(field.Label)
	default:
		return err.Message
	}
}

func acceptList(formats []string) string {
	if len(formats) == 0 {
		return ""
	}
	exts := make([]string, 0, len(formats))
	for _, format := range formats {
		exts = append(exts, "."+strings.TrimPrefix(format, "."))
	}
	return strings.Join(exts, ",")
}

func lowerFirst(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return text
	}
	return string(unicode.ToLower(r)) + text[size:]
}
