package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
)

// ErrPayloadMismatch wraps every payload validation failure.
var ErrPayloadMismatch = errors.New("openapi: payload does not match schema")

// Validator checks submission payloads against the exported payload schema.
// It is safe for concurrent use once constructed.
type Validator struct {
	name   string
	schema *openapi3.Schema
}

// NewValidator derives the payload schema for schema.
func NewValidator(schema model.Schema) (*Validator, error) {
	payload, err := PayloadSchema(schema)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("openapi: payload schema: %w", err)
	}
	return &Validator{name: SchemaName(schema), schema: payload}, nil
}

// Name reports the component name the validator checks against.
func (v *Validator) Name() string {
	return v.name
}

// Validate decodes payload as JSON and visits it with the payload schema,
// collecting every violation.
func (v *Validator) Validate(payload []byte) error {
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPayloadMismatch, err)
	}
	if err := v.schema.VisitJSON(decoded, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %w", ErrPayloadMismatch, err)
	}
	return nil
}

// SubmitHook returns a form submit hook that rejects submissions whose
// payload violates the contract.
func (v *Validator) SubmitHook() form.SubmitHook {
	return func(_ context.Context, submission form.Submission) error {
		return v.Validate(submission.Payload)
	}
}
