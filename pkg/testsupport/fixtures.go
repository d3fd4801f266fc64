package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// SignupSchema returns the embedded sign-up schema (username, password,
// email, gender, colors, country, file), failing the test if it cannot load.
func SignupSchema(t testing.TB) model.Schema {
	t.Helper()

	out, err := schema.Default()
	if err != nil {
		t.Fatalf("load default schema: %v", err)
	}
	return out
}

// UsernameSchema is the single-field schema used by the end-to-end
// scenarios: a required text field accepting letters and spaces only.
func UsernameSchema() model.Schema {
	return model.Schema{
		SubmitLabel: model.DefaultSubmitLabel,
		Fields: []model.Field{{
			Name:        "username",
			Label:       "Name",
			Type:        model.FieldTypeText,
			Required:    true,
			Regex:       `^[a-zA-Z\s]*$`,
			Placeholder: "Enter Name",
		}},
	}
}

// ColorsSchema is a single multi-value checkbox group with two options.
func ColorsSchema() model.Schema {
	return model.Schema{
		SubmitLabel: model.DefaultSubmitLabel,
		Fields: []model.Field{{
			Name:       "colors",
			Label:      "Colour",
			Type:       model.FieldTypeCheckbox,
			MultiValue: model.Bool(true),
			Options: []model.Option{
				{Label: "Red", Value: "red"},
				{Label: "Green", Value: "green"},
			},
		}},
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t testing.TB, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
