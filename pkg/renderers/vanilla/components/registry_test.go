package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

func TestDefaultRegistryCoversEveryFieldType(t *testing.T) {
	reg := NewDefaultRegistry()

	want := []string{NameCheckbox, NameFile, NamePassword, NameRadio, NameSelect, NameText}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("registered components mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryCloneIsolatesOverrides(t *testing.T) {
	reg := NewDefaultRegistry()
	clone := reg.Clone()

	custom := func(buf *bytes.Buffer, _ model.Field, _ ComponentData) error {
		buf.WriteString("custom")
		return nil
	}
	clone.MustRegister(" TEXT ", Descriptor{Renderer: custom})

	desc, ok := clone.Descriptor("text")
	if !ok || desc.Name != "text" {
		t.Fatalf("expected normalized override, got %+v", desc)
	}
	var buf bytes.Buffer
	if err := desc.Renderer(&buf, model.Field{}, ComponentData{}); err != nil || buf.String() != "custom" {
		t.Fatalf("expected override renderer on clone, got %q (%v)", buf.String(), err)
	}

	original, _ := reg.Descriptor("text")
	buf.Reset()
	if err := original.Renderer(&buf, model.Field{Name: "x"}, ComponentData{}); err == nil {
		t.Fatal("expected original template renderer to require a template engine")
	}
}

func TestRegistryRejectsInvalidDescriptors(t *testing.T) {
	reg := New()
	if err := reg.Register("", Descriptor{Renderer: func(*bytes.Buffer, model.Field, ComponentData) error { return nil }}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := reg.Register("text", Descriptor{}); err == nil {
		t.Fatal("expected error for nil renderer")
	}
}

func TestViewBuilderSanitizesAndMapsErrors(t *testing.T) {
	builder := NewViewBuilder(nil)

	colors := model.Field{
		Name:       "colors",
		Label:      "<b>Colour</b>",
		Type:       model.FieldTypeCheckbox,
		MultiValue: model.Bool(true),
		Options: []model.Option{
			{Label: "Red<script>alert(1)</script>", Value: "red"},
			{Label: "Green", Value: "green"},
		},
	}
	view := builder.Build(ViewInput{
		Field: colors,
		Value: model.List("green"),
		Error: &validation.FieldError{Field: "colors", Kind: validation.KindEmptyMultiSelection, Message: "Colour is required"},
	})

	if view.Label != "Colour" {
		t.Fatalf("expected sanitized label, got %q", view.Label)
	}
	if view.Options[0].Label != "Red" {
		t.Fatalf("expected sanitized option label, got %q", view.Options[0].Label)
	}
	if view.Options[0].Checked || !view.Options[1].Checked {
		t.Fatalf("unexpected checked state %+v", view.Options)
	}
	if view.ErrorText != "Choose at least one colour" {
		t.Fatalf("unexpected error text %q", view.ErrorText)
	}
	if view.Classes != controlClass+" "+invalidClass {
		t.Fatalf("expected invalid class, got %q", view.Classes)
	}
}

func TestViewBuilderPasswordAndFile(t *testing.T) {
	builder := NewViewBuilder(nil)

	password := builder.Build(ViewInput{
		Field:  model.Field{Name: "password", Label: "Password", Type: model.FieldTypePassword, Required: true},
		Value:  model.Text("secret"),
		Error:  &validation.FieldError{Field: "password", Kind: validation.KindMissingRequiredValue, Message: "Password is required"},
		Reveal: true,
	})
	if password.ErrorText != PasswordErrorText || password.RequiredMessage != PasswordErrorText {
		t.Fatalf("expected fixed password text, got %+v", password)
	}
	if password.Value != "" {
		t.Fatalf("password value must not be echoed, got %q", password.Value)
	}
	if !password.Reveal {
		t.Fatal("expected reveal flag to carry through")
	}

	file := builder.Build(ViewInput{
		Field: model.Field{Name: "file", Label: "File", Type: model.FieldTypeFile, FileFormatSupported: []string{"jpg", "jpeg", "png"}},
		Value: model.Text("avatar.png"),
	})
	if file.Accept != ".jpg,.jpeg,.png" {
		t.Fatalf("unexpected accept attribute %q", file.Accept)
	}
	if file.Invalid || file.Classes != controlClass {
		t.Fatalf("expected valid file view, got %+v", file)
	}
}

func TestChooseAtLeastOne(t *testing.T) {
	if got := ChooseAtLeastOne(" Colour "); got != "Choose at least one colour" {
		t.Fatalf("unexpected message %q", got)
	}
}
