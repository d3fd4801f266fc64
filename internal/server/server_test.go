package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-dynform/internal/metrics"
	"github.com/goliatone/go-dynform/internal/server"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

func newServer(t *testing.T, initial model.Schema, opts ...server.Option) *server.Server {
	t.Helper()
	srv, err := server.New(initial, opts...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *server.Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, string(body)
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func mustContain(t *testing.T, body string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected body to contain %q, got:\n%s", fragment, body)
		}
	}
}

func TestGetRendersForm(t *testing.T) {
	srv := newServer(t, testsupport.SignupSchema(t))
	res, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	mustContain(t, body,
		"<!doctype html>",
		`name="username"`,
		`<input type="hidden" name="_form" value="signup">`,
		`/assets/dynform-runtime.js`,
	)
}

func TestPostAcceptsValidSubmission(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New()
	srv := newServer(t, testsupport.UsernameSchema(), server.WithLogger(zap.New(core)), server.WithMetrics(m))

	res, body := do(t, srv, postForm(url.Values{"username": {"John Doe"}}))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", res.StatusCode, body)
	}
	mustContain(t, body, `data-dynform-flash="success">Form submitted successfully!</div>`)
	if strings.Contains(body, `value="John Doe"`) {
		t.Fatalf("expected state reset after acceptance:\n%s", body)
	}
	if logs.FilterMessage("submission accepted").Len() != 1 {
		t.Fatalf("expected one submission log, got %v", logs.All())
	}
	if got := testutil.ToFloat64(m.Submissions.WithLabelValues("", "accepted", "none")); got != 1 {
		t.Fatalf("accepted counter = %v", got)
	}
}

func TestPostPatternMismatchByGateMode(t *testing.T) {
	strict := newServer(t, testsupport.UsernameSchema())
	res, body := do(t, strict, postForm(url.Values{"username": {"John123"}}))
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("strict status = %d", res.StatusCode)
	}
	mustContain(t, body,
		`data-dynform-flash="error">Please correct the highlighted fields.</div>`,
		`value="John123"`,
		`data-dynform-error="username">Name is not valid</p>`,
	)

	presence := newServer(t, testsupport.UsernameSchema(), server.WithGateMode(form.GatePresence))
	res, _ = do(t, presence, postForm(url.Values{"username": {"John123"}}))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("presence status = %d", res.StatusCode)
	}
}

func TestPostMissingRequired(t *testing.T) {
	srv := newServer(t, testsupport.SignupSchema(t))
	res, body := do(t, srv, postForm(url.Values{"_form": {"signup"}, "username": {"John"}}))
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.StatusCode)
	}
	mustContain(t, body,
		`Please fill in all required fields.`,
		`data-dynform-error="email">Email is required</p>`,
		`data-dynform-error="colors">Choose at least one colour</p>`,
	)
}

func TestPostJSONResponse(t *testing.T) {
	srv := newServer(t, testsupport.UsernameSchema())
	req := postForm(url.Values{"username": {""}})
	req.Header.Set("Accept", "application/json")

	res, body := do(t, srv, req)
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, body)
	}
	want := map[string]any{
		"accepted": false,
		"message":  form.MessageMissingRequired,
		"reason":   string(form.ReasonMissingRequired),
		"errors":   map[string]any{"username": "Name is required"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestPostJSONBodyWithVerification(t *testing.T) {
	srv := newServer(t, testsupport.SignupSchema(t), server.WithPayloadVerification(true))
	payload := `{
  "username": "John Doe",
  "password": "secret",
  "email": "john@example.com",
  "gender": "male",
  "colors": ["red", "blue"],
  "country": "uk",
  "file": "photo.jpg"
}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	res, body := do(t, srv, req)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", res.StatusCode, body)
	}
	var got struct {
		Accepted     bool   `json:"accepted"`
		SubmissionID string `json:"submission_id"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Accepted || got.SubmissionID == "" {
		t.Fatalf("unexpected response %s", body)
	}
}

func TestVerificationRejectsContractViolations(t *testing.T) {
	srv := newServer(t, testsupport.UsernameSchema(),
		server.WithGateMode(form.GatePresence),
		server.WithPayloadVerification(true),
	)
	res, body := do(t, srv, postForm(url.Values{"username": {"John123"}}))
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.StatusCode)
	}
	mustContain(t, body, form.MessageHookFailed)
}

func TestPostMultipartFile(t *testing.T) {
	upload := model.Schema{Fields: []model.Field{
		{Name: "username", Label: "Name", Type: model.FieldTypeText, Required: true},
		{Name: "avatar", Label: "Avatar", Type: model.FieldTypeFile, Required: true, FileFormatSupported: []string{"png"}},
	}}
	var submitted form.Submission
	hook := form.WithSubmitHook(func(_ context.Context, s form.Submission) error {
		submitted = s
		return nil
	})
	srv := newServer(t, upload, server.WithFormOptions(hook))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("username", "Jane")
	part, err := mw.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res, body := do(t, srv, req)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", res.StatusCode, body)
	}
	if got := submitted.Values["avatar"].String(); got != "me.png" {
		t.Fatalf("expected file name only, got %q", got)
	}
}

func TestPostStaleFormID(t *testing.T) {
	srv := newServer(t, testsupport.SignupSchema(t))
	res, _ := do(t, srv, postForm(url.Values{"_form": {"login"}}))
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestAuxiliaryRoutes(t *testing.T) {
	srv := newServer(t, testsupport.SignupSchema(t))

	res, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/schema.json", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("schema status = %d", res.StatusCode)
	}
	var decoded model.Schema
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if diff := cmp.Diff(testsupport.SignupSchema(t).Names(), decoded.Names()); diff != "" {
		t.Fatalf("schema names mismatch (-want +got):\n%s", diff)
	}

	_, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	mustContain(t, body, `"SignupSubmission"`, `"operationId": "signup"`)

	res, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/assets/dynform-runtime.js", nil))
	if res.StatusCode != http.StatusOK || !strings.Contains(body, "data-dynform") {
		t.Fatalf("asset status = %d", res.StatusCode)
	}

	_, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	mustContain(t, body, "dynform_http_requests_total")
}

const reloadYAML = `id: survey
fields:
  - name: username
    type: text
    required: true
`

func TestReloadSwapsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte(reloadYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := schema.NewLoader()
	initial, err := loader.Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := newServer(t, initial, server.WithSource(loader, schema.SourceFromFile(path), ""))

	updated := reloadYAML + "  - name: nickname\n    type: text\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff([]string{"username", "nickname"}, srv.Schema().Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(path, []byte("fields: [{name: broken, type: slider}]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := srv.Reload(context.Background()); err == nil {
		t.Fatal("expected invalid schema to be rejected")
	}
	if len(srv.Schema().Fields) != 2 {
		t.Fatal("expected previous schema to stay served after a failed reload")
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte(reloadYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := schema.NewLoader()
	initial, err := loader.Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := newServer(t, initial,
		server.WithSource(loader, schema.SourceFromFile(path), ""),
		server.WithDebounce(10*time.Millisecond),
	)

	stop, err := srv.Watch(context.Background())
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer stop()

	updated := reloadYAML + "  - name: nickname\n    type: text\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(srv.Schema().Fields) == 2 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("schema not reloaded, still %v", srv.Schema().Names())
}

func TestWatchRequiresFileSource(t *testing.T) {
	srv := newServer(t, testsupport.UsernameSchema())
	if _, err := srv.Watch(context.Background()); err == nil {
		t.Fatal("expected error without a file source")
	}
}
