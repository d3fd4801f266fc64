package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/model"
)

// User-facing gate messages. Rejections never name the failing fields; the
// inline per-field errors carry that detail.
const (
	MessageAccepted        = "Form submitted successfully!"
	MessageMissingRequired = "Please fill in all required fields."
	MessageInvalid         = "Please correct the highlighted fields."
	MessageHookFailed      = "The form could not be submitted. Please try again."
)

// RejectReason explains why the gate refused a submission.
type RejectReason string

const (
	ReasonNone             RejectReason = ""
	ReasonMissingRequired  RejectReason = "missing_required"
	ReasonValidationFailed RejectReason = "validation_failed"
	ReasonHookFailed       RejectReason = "hook_failed"
	ReasonCanceled         RejectReason = "canceled"
)

// Submission is the accepted value map handed to hooks and diagnostics.
type Submission struct {
	ID      string
	FormID  string
	At      time.Time
	Values  map[string]model.Value
	Payload []byte
}

// Outcome is the binary result of a submission attempt.
type Outcome struct {
	Accepted     bool
	Message      string
	Reason       RejectReason
	SubmissionID string
	// Payload is the indented JSON value map, set on acceptance.
	Payload []byte
}

// Submit runs the submission gate. On acceptance the value map is serialized,
// logged, handed to hooks and the FormState is reset. On rejection every field
// is marked touched so inline errors show, and the state is kept.
func (f *Form) Submit(ctx context.Context) Outcome {
	if err := ctx.Err(); err != nil {
		return f.reject(ReasonCanceled, MessageHookFailed, zap.Error(err))
	}

	if missing := f.missingRequired(); len(missing) > 0 {
		return f.reject(ReasonMissingRequired, MessageMissingRequired, zap.Strings("missing", missing))
	}
	if f.mode == GateStrict && !f.state.Valid() {
		return f.reject(ReasonValidationFailed, MessageInvalid, zap.Int("invalid_fields", len(f.state.errors)))
	}

	payload, err := MarshalValues(f.schema, f.state.values)
	if err != nil {
		return f.reject(ReasonHookFailed, MessageHookFailed, zap.Error(err))
	}

	submission := Submission{
		ID:      f.newID(),
		FormID:  f.schema.ID,
		At:      f.now(),
		Values:  f.state.Values(),
		Payload: payload,
	}
	for _, hook := range f.hooks {
		if err := hook(ctx, submission); err != nil {
			return f.reject(ReasonHookFailed, MessageHookFailed, zap.String("submission_id", submission.ID), zap.Error(err))
		}
	}

	f.logger.Info("submission accepted",
		zap.String("submission_id", submission.ID),
		zap.String("form", submission.FormID),
		zap.ByteString("payload", payload),
	)
	if f.diagnostics != nil {
		if _, err := fmt.Fprintf(f.diagnostics, "%s\n", payload); err != nil {
			f.logger.Warn("write submission diagnostic", zap.Error(err))
		}
	}

	f.Reset()
	return Outcome{
		Accepted:     true,
		Message:      MessageAccepted,
		SubmissionID: submission.ID,
		Payload:      payload,
	}
}

func (f *Form) missingRequired() []string {
	var missing []string
	for _, field := range f.schema.Fields {
		if field.Required && f.state.values[field.Name].Empty() {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

func (f *Form) reject(reason RejectReason, message string, fields ...zap.Field) Outcome {
	f.TouchAll()
	f.logger.Debug("submission rejected", append([]zap.Field{zap.String("reason", string(reason))}, fields...)...)
	return Outcome{Message: message, Reason: reason}
}

// MarshalValues serializes values as indented JSON with keys in schema order.
// Fields missing from values are emitted with their empty value.
func MarshalValues(schema model.Schema, values map[string]model.Value) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, field := range schema.Fields {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, ok := values[field.Name]
		if !ok {
			value = field.EmptyValue()
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("form: marshal %q: %w", field.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(encoded)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("form: indent payload: %w", err)
	}
	return out.Bytes(), nil
}
