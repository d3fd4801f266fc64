package validation

import "fmt"

// Kind classifies a field-level validation failure.
type Kind string

const (
	// KindMissingRequiredValue: a required field is empty.
	KindMissingRequiredValue Kind = "missing_required_value"
	// KindPatternMismatch: a non-empty value does not match the declared regex.
	KindPatternMismatch Kind = "pattern_mismatch"
	// KindInvalidOptionSelection: a radio/select/checkbox value is not one of
	// the declared options.
	KindInvalidOptionSelection Kind = "invalid_option_selection"
	// KindEmptyMultiSelection: a multi-value checkbox group has no selection.
	KindEmptyMultiSelection Kind = "empty_multi_selection"
	// KindUnsupportedFileFormat: the file name's extension is not accepted.
	KindUnsupportedFileFormat Kind = "unsupported_file_format"
)

// FieldError is the single failure reported for a field.
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Messages flattens a result map into name → message.
func Messages(errs map[string]*FieldError) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for name, err := range errs {
		if err != nil {
			out[name] = err.Message
		}
	}
	return out
}
