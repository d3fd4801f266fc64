package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
)

// submitResponse is the JSON body returned to clients that accept JSON.
type submitResponse struct {
	Accepted     bool              `json:"accepted"`
	Message      string            `json:"message"`
	Reason       string            `json:"reason,omitempty"`
	SubmissionID string            `json:"submission_id,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	s.writeForm(w, r, http.StatusOK, snap.schema, render.RenderOptions{Action: r.URL.Path})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()

	options := []form.Option{
		form.WithRuleset(snap.rules),
		form.WithGateMode(s.gate),
		form.WithLogger(s.logger),
	}
	if s.verify {
		options = append(options, form.WithSubmitHook(snap.validator.SubmitHook()))
	}
	options = append(options, s.formOptions...)

	f, err := form.New(snap.schema, options...)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	values, formID, err := s.decodeSubmission(r, snap.schema)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if formID != "" && snap.schema.ID != "" && formID != snap.schema.ID {
		s.fail(w, http.StatusConflict, fmt.Errorf("form %q is no longer served", formID))
		return
	}
	for name, value := range values {
		if err := f.Change(name, value); err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
	}

	outcome := f.Submit(r.Context())
	s.metrics.ObserveOutcome(snap.schema.ID, outcome)

	status := http.StatusOK
	if !outcome.Accepted {
		status = http.StatusUnprocessableEntity
	}

	if wantsJSON(r) {
		resp := submitResponse{
			Accepted:     outcome.Accepted,
			Message:      outcome.Message,
			Reason:       string(outcome.Reason),
			SubmissionID: outcome.SubmissionID,
		}
		if !outcome.Accepted {
			resp.Errors = f.State().VisibleErrors()
		}
		s.writeJSON(w, status, resp)
		return
	}

	opts := render.RenderOptions{Action: r.URL.Path}
	if !outcome.Accepted {
		opts = render.OptionsFromForm(f)
		opts.Action = r.URL.Path
	}
	opts.Flash = render.FlashFromOutcome(outcome)
	s.writeForm(w, r, status, snap.schema, opts)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.current.Load().schema)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.current.Load().openapi)
}

// decodeSubmission reads posted values for the fields schema declares.
// Unknown keys are ignored. File fields carry the uploaded file name only.
func (s *Server) decodeSubmission(r *http.Request, schema model.Schema) (map[string]model.Value, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var payload map[string]model.Value
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, s.maxUpload)).Decode(&payload); err != nil {
			return nil, "", fmt.Errorf("decode json: %w", err)
		}
		values := make(map[string]model.Value, len(payload))
		for _, field := range schema.Fields {
			if value, ok := payload[field.Name]; ok {
				values[field.Name] = value
			}
		}
		return values, "", nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			return nil, "", fmt.Errorf("parse multipart: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, "", fmt.Errorf("parse form: %w", err)
	}

	values := make(map[string]model.Value, len(schema.Fields))
	for _, field := range schema.Fields {
		switch {
		case field.IsList():
			var items []string
			for _, item := range r.PostForm[field.Name] {
				if item != "" {
					items = append(items, item)
				}
			}
			values[field.Name] = model.List(items...)
		case field.Type == model.FieldTypeFile:
			values[field.Name] = model.Text(uploadedName(r, field.Name))
		default:
			values[field.Name] = model.Text(r.PostForm.Get(field.Name))
		}
	}
	return values, r.PostForm.Get(render.FormIDField), nil
}

func uploadedName(r *http.Request, name string) string {
	if r.MultipartForm != nil {
		if headers := r.MultipartForm.File[name]; len(headers) > 0 {
			return headers[0].Filename
		}
	}
	return r.PostForm.Get(name)
}

func (s *Server) writeForm(w http.ResponseWriter, r *http.Request, status int, schema model.Schema, opts render.RenderOptions) {
	out, err := s.renderer.Render(r.Context(), schema, opts)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		status = http.StatusRequestEntityTooLarge
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}
