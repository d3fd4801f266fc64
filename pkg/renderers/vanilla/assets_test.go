package vanilla

import (
	"io/fs"
	"strings"
	"testing"
)

func TestAssetsFSIncludesRuntime(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), RuntimeScriptName)
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	for _, marker := range []string{"data-dynform-field", "data-dynform-toggle", "border-red-500"} {
		if !strings.Contains(string(data), marker) {
			t.Fatalf("expected runtime to reference %s", marker)
		}
	}
}

func TestTemplatesFSHasComponentPerFieldType(t *testing.T) {
	for _, name := range []string{"text", "password", "radio", "checkbox", "select", "file"} {
		if _, err := fs.Stat(TemplatesFS(), "templates/components/"+name+".tmpl"); err != nil {
			t.Fatalf("missing component template for %s: %v", name, err)
		}
	}
}
