package schema_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

const listJSON = `[
  {"name": "username", "type": "text", "required": true, "regex": "^[a-zA-Z\\s]*$", "label": "Name"},
  {"name": "colors", "type": "checkbox", "label": "Colour",
   "options": [{"label": "Red", "value": "red"}, {"label": "Blue", "value": "blue"}]}
]`

func TestDefaultSchema(t *testing.T) {
	got, err := schema.Default()
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}

	want := []string{"username", "password", "email", "gender", "colors", "country", "file"}
	if diff := cmp.Diff(want, got.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	password, _ := got.Field("password")
	if len(password.RegexMessage) != 5 {
		t.Fatalf("expected 5 password messages, got %d", len(password.RegexMessage))
	}
	colors, _ := got.Field("colors")
	if !colors.IsMultiValue() {
		t.Fatalf("colors must be multi value")
	}
	file, _ := got.Field("file")
	if diff := cmp.Diff([]string{"jpg", "jpeg", "png"}, file.FileFormatSupported); diff != "" {
		t.Fatalf("file formats mismatch:\n%s", diff)
	}
}

func TestDefaultSchemaReturnsIndependentCopies(t *testing.T) {
	first, err := schema.Default()
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}
	first.Fields[0].Label = "mutated"

	second, err := schema.Default()
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}
	if second.Fields[0].Label != "Name" {
		t.Fatalf("default schema was mutated through a copy")
	}
}

func TestLoaderDecodesJSONList(t *testing.T) {
	loader := schema.NewLoader(schema.WithFileSystem(fstest.MapFS{
		"fields.json": &fstest.MapFile{Data: []byte(listJSON)},
	}))

	got, err := loader.Load(context.Background(), schema.SourceFromFS("fields.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SubmitLabel != model.DefaultSubmitLabel {
		t.Fatalf("defaults not applied: %+v", got)
	}
	username, _ := got.Field("username")
	if username.Regex != `^[a-zA-Z\s]*$` {
		t.Fatalf("regex = %q", username.Regex)
	}
	colors, _ := got.Field("colors")
	if !colors.IsMultiValue() {
		t.Fatalf("checkbox must default to multi value")
	}
}

func TestLoaderDecodesYAMLObjectFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contact.yaml")
	doc := `
id: contact
title: Contact
fields:
  - name: email
    type: text
    regex: '^\S+@\S+$'
    regexMessage: Must be an email address
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := schema.NewLoader().Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != "contact" || got.Title != "Contact" {
		t.Fatalf("unexpected header: %+v", got)
	}
	email := got.Fields[0]
	if email.Label != "Email" {
		t.Fatalf("label fallback = %q", email.Label)
	}
	if diff := cmp.Diff(model.Messages{"Must be an email address"}, email.RegexMessage); diff != "" {
		t.Fatalf("regex message mismatch:\n%s", diff)
	}
}

func TestLoaderRejectsInvalidSchema(t *testing.T) {
	loader := schema.NewLoader(schema.WithFileSystem(fstest.MapFS{
		"bad.yaml": &fstest.MapFile{Data: []byte("- name: gender\n  type: radio\n")},
	}))
	_, err := loader.Load(context.Background(), schema.SourceFromFS("bad.yaml"))
	if err == nil || !strings.Contains(err.Error(), "require at least one option") {
		t.Fatalf("expected option error, got %v", err)
	}
}

func TestLoaderRejectsScalarDocument(t *testing.T) {
	doc := schema.MustNewDocument(schema.SourceFromFS("scalar.yaml"), []byte("just text"))
	if _, err := schema.NewLoader().Build(doc); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoaderURLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fields.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listJSON))
	}))
	defer srv.Close()

	offline := schema.NewLoader()
	if _, err := offline.Load(context.Background(), schema.SourceFromURL(srv.URL+"/fields.json")); err == nil {
		t.Fatalf("expected http to be disabled by default")
	}

	online := schema.NewLoader(schema.WithHTTPFallback(2 * time.Second))
	got, err := online.Load(context.Background(), schema.SourceFromURL(srv.URL+"/fields.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got.Fields))
	}

	if _, err := online.Load(context.Background(), schema.SourceFromURL(srv.URL+"/missing.json")); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestParseSource(t *testing.T) {
	src, err := schema.ParseSource("https://example.com/form.yaml")
	if err != nil || src.Kind() != schema.SourceKindURL {
		t.Fatalf("expected url source, got %v %v", src, err)
	}
	src, err = schema.ParseSource("./forms/signup.yaml")
	if err != nil || src.Kind() != schema.SourceKindFile {
		t.Fatalf("expected file source, got %v %v", src, err)
	}
	if _, err := schema.ParseSource(""); err == nil {
		t.Fatalf("expected error for empty location")
	}
}
