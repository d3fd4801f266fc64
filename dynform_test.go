package dynform_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-dynform"
	"github.com/goliatone/go-dynform/pkg/model"
)

func TestRenderFormShowsTouchedErrors(t *testing.T) {
	s, err := dynform.DefaultSchema()
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}
	f, err := dynform.NewForm(s)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if err := f.Change("username", model.Text("John123")); err != nil {
		t.Fatalf("change: %v", err)
	}
	if err := f.Blur("username"); err != nil {
		t.Fatalf("blur: %v", err)
	}

	html, err := dynform.RenderForm(context.Background(), f)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, `data-dynform-error="username">Name is not valid</p>`) {
		t.Fatalf("expected username error:\n%s", out)
	}
	if strings.Contains(out, "Email is required") {
		t.Fatalf("untouched fields must not show errors:\n%s", out)
	}
}

func TestLoadSchemaFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contact.json")
	if err := os.WriteFile(path, []byte(`[{"name": "email", "type": "text", "required": true}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := dynform.LoadSchema(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := s.Fields[0].Placeholder; got != "Enter Email" {
		t.Fatalf("expected defaults to apply, got placeholder %q", got)
	}
}

func TestNewRegistryDefaultsToHTML(t *testing.T) {
	registry, err := dynform.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	renderer, err := registry.Get("")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if renderer.Name() != "vanilla" || !registry.Has("tui") {
		t.Fatalf("unexpected registry contents %v", registry.List())
	}
}
