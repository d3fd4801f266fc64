package form

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/validation"
)

// GateMode selects what the submission gate checks.
type GateMode string

const (
	// GateStrict requires every required field to be filled and every live
	// validator to pass.
	GateStrict GateMode = "strict"
	// GatePresence only requires required fields to be non-empty; pattern and
	// option failures stay visible inline but do not block submission.
	GatePresence GateMode = "presence"
)

// ParseGateMode maps a config string to a GateMode, defaulting to strict.
func ParseGateMode(raw string) GateMode {
	if GateMode(raw) == GatePresence {
		return GatePresence
	}
	return GateStrict
}

// SubmitHook observes accepted submissions before state is reset. Returning an
// error rejects the submission and keeps the state intact.
type SubmitHook func(ctx context.Context, submission Submission) error

// Option configures a Form.
type Option func(*Form)

// WithGateMode selects the submission gate behaviour.
func WithGateMode(mode GateMode) Option {
	return func(f *Form) {
		if mode != "" {
			f.mode = mode
		}
	}
}

// WithLogger routes the submission diagnostics through logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDiagnosticWriter additionally writes the indented JSON payload of every
// accepted submission to w.
func WithDiagnosticWriter(w io.Writer) Option {
	return func(f *Form) {
		f.diagnostics = w
	}
}

// WithSubmitHook registers a hook run for accepted submissions.
func WithSubmitHook(hook SubmitHook) Option {
	return func(f *Form) {
		if hook != nil {
			f.hooks = append(f.hooks, hook)
		}
	}
}

// WithRuleset reuses an already derived ruleset instead of deriving one from
// the schema. The ruleset must have been derived from the same schema.
func WithRuleset(rules validation.Ruleset) Option {
	return func(f *Form) {
		f.rules = &rules
	}
}

// WithIDGenerator overrides the submission id generator.
func WithIDGenerator(fn func() string) Option {
	return func(f *Form) {
		if fn != nil {
			f.newID = fn
		}
	}
}

// WithClock overrides the time source used to stamp submissions.
func WithClock(fn func() time.Time) Option {
	return func(f *Form) {
		if fn != nil {
			f.now = fn
		}
	}
}
