package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	selects      []SelectConfig
	inputPos     int
	passPos      int
	selectPos    int
	multiPos     int
	confirmPos   int
	failWith     error
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func newTestRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRender_SignupSession(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"John Doe", "john@example.com", "/tmp/uploads/photo.png"},
		passwords: []string{"secret"},
		selectIdx: []int{0, 1},
		multiIdx:  [][]int{{}, {0, 2}},
	}
	r := newTestRenderer(t, WithPromptDriver(driver))

	out, err := r.Render(testsupport.Context(), testsupport.SignupSchema(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	want := map[string]any{
		"username": "John Doe",
		"password": "secret",
		"email":    "john@example.com",
		"gender":   "male",
		"colors":   []any{"red", "blue"},
		"country":  "canada",
		"file":     "photo.png",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	if !driver.sawInfo("Colour is required") {
		t.Fatalf("expected the empty selection to be reported, got %v", driver.infoMessages)
	}
	if !driver.sawInfo(form.MessageAccepted) {
		t.Fatalf("expected acknowledgment, got %v", driver.infoMessages)
	}
	if r.ContentType() != "application/json" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_RepromptsUntilValid(t *testing.T) {
	driver := &stubDriver{inputs: []string{"John123", "", "John"}}
	r := newTestRenderer(t, WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), testsupport.UsernameSchema(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff("username=John\n", string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if !driver.sawInfo("Name is not valid") || !driver.sawInfo("Name is required") {
		t.Fatalf("expected both live errors, got %v", driver.infoMessages)
	}
	if driver.inputPos != 3 {
		t.Fatalf("expected 3 prompts, got %d", driver.inputPos)
	}
}

func TestRender_MaxAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"123", "456"}}
	r := newTestRenderer(t, WithPromptDriver(driver), WithMaxAttempts(2))

	_, err := r.Render(context.Background(), testsupport.UsernameSchema(), render.RenderOptions{})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRender_RejectedSubmission(t *testing.T) {
	driver := &stubDriver{inputs: []string{"John"}, confirm: []bool{false}}
	failing := form.WithSubmitHook(func(context.Context, form.Submission) error {
		return errors.New("storage offline")
	})
	r := newTestRenderer(t, WithPromptDriver(driver), WithFormOptions(failing))

	_, err := r.Render(context.Background(), testsupport.UsernameSchema(), render.RenderOptions{})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if !driver.sawInfo(form.MessageHookFailed) {
		t.Fatalf("expected rejection message, got %v", driver.infoMessages)
	}
}

func TestRender_FormURLEncoded(t *testing.T) {
	driver := &stubDriver{multiIdx: [][]int{{1, 0}}}
	r := newTestRenderer(t, WithPromptDriver(driver), WithOutputFormat(ParseOutputFormat("form")))

	out, err := r.Render(context.Background(), testsupport.ColorsSchema(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "colors=green&colors=red" {
		t.Fatalf("unexpected payload %q", got)
	}
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_OptionalSelectOffersNone(t *testing.T) {
	schema := model.Schema{Fields: []model.Field{{
		Name:    "country",
		Label:   "Country",
		Type:    model.FieldTypeSelect,
		Options: []model.Option{{Label: "USA", Value: "usa"}, {Label: "UK", Value: "uk"}},
	}}}
	driver := &stubDriver{selectIdx: []int{0}}
	r := newTestRenderer(t, WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "country=\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if diff := cmp.Diff([]string{noneOption, "USA", "UK"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PrefillAndReveal(t *testing.T) {
	schema := model.Schema{Fields: []model.Field{{Name: "password", Label: "Password", Type: model.FieldTypePassword, Required: true}}}
	driver := &stubDriver{inputs: []string{"visible"}}
	r := newTestRenderer(t, WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), schema, render.RenderOptions{RevealPasswords: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "password=visible\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if driver.passPos != 0 {
		t.Fatal("expected revealed passwords to use the plain input prompt")
	}
}

func TestRender_PropagatesAbort(t *testing.T) {
	driver := &stubDriver{failWith: ErrAborted}
	r := newTestRenderer(t, WithPromptDriver(driver))

	_, err := r.Render(context.Background(), testsupport.UsernameSchema(), render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestParseOutputFormat(t *testing.T) {
	cases := map[string]OutputFormat{
		"":       OutputFormatJSON,
		"json":   OutputFormatJSON,
		"form":   OutputFormatFormURLEncoded,
		"pretty": OutputFormatPrettyText,
		"xml":    OutputFormatJSON,
	}
	for raw, want := range cases {
		if got := ParseOutputFormat(raw); got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", raw, got, want)
		}
	}
}
