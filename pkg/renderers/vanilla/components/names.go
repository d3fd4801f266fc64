package components

import "github.com/goliatone/go-dynform/pkg/model"

// Component names used by the default registry. Each matches the field type it
// renders.
const (
	NameText     = string(model.FieldTypeText)
	NamePassword = string(model.FieldTypePassword)
	NameRadio    = string(model.FieldTypeRadio)
	NameCheckbox = string(model.FieldTypeCheckbox)
	NameSelect   = string(model.FieldTypeSelect)
	NameFile     = string(model.FieldTypeFile)
)
