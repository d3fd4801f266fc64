// Package server exposes a field schema as an HTTP form: GET renders it, POST
// runs the submission gate and re-renders with the result.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/metrics"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/validation"
)

const (
	defaultMaxUpload = 10 << 20
	shutdownTimeout  = 5 * time.Second
)

// snapshot is the read-mostly state shared by every request. It is replaced
// wholesale on reload and never mutated.
type snapshot struct {
	schema    model.Schema
	rules     validation.Ruleset
	openapi   []byte
	validator *openapi.Validator
}

// Server serves one form. Each request mounts its own form.Form, so no form
// state is shared between requests.
type Server struct {
	logger      *zap.Logger
	metrics     *metrics.Metrics
	renderer    render.Renderer
	gate        form.GateMode
	verify      bool
	formOptions []form.Option
	maxUpload   int64

	loader    *schema.Loader
	source    schema.Source
	operation string
	debounce  time.Duration

	current atomic.Pointer[snapshot]
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and submission logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the collectors; New creates a private set otherwise.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRenderer replaces the HTML renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithGateMode selects the submission gate of every request's form.
func WithGateMode(mode form.GateMode) Option {
	return func(s *Server) {
		if mode != "" {
			s.gate = mode
		}
	}
}

// WithPayloadVerification checks accepted payloads against the exported
// OpenAPI payload schema before acknowledging them.
func WithPayloadVerification(enabled bool) Option {
	return func(s *Server) {
		s.verify = enabled
	}
}

// WithFormOptions forwards extra options, such as submit hooks, to every
// request's form.
func WithFormOptions(options ...form.Option) Option {
	return func(s *Server) {
		s.formOptions = append(s.formOptions, options...)
	}
}

// WithSource records where the schema came from so Reload and Watch can
// fetch it again. A non-empty operation imports it from an OpenAPI document.
func WithSource(loader *schema.Loader, src schema.Source, operation string) Option {
	return func(s *Server) {
		s.loader = loader
		s.source = src
		s.operation = operation
	}
}

// WithDebounce sets how long Watch waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// New validates schema and builds the router.
func New(initial model.Schema, options ...Option) (*Server, error) {
	s := &Server{
		logger:    zap.NewNop(),
		gate:      form.GateStrict,
		maxUpload: defaultMaxUpload,
		debounce:  250 * time.Millisecond,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.loader == nil {
		s.loader = schema.NewLoader()
	}
	if s.renderer == nil {
		renderer, err := vanilla.New(vanilla.WithDocument("/assets/" + vanilla.RuntimeScriptName))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderer = renderer
	}
	if err := s.Swap(initial); err != nil {
		return nil, err
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Schema returns the schema currently served.
func (s *Server) Schema() model.Schema {
	return s.current.Load().schema
}

// Swap validates next, derives its ruleset and OpenAPI document and makes it
// the served schema. In-flight requests finish with the previous snapshot.
func (s *Server) Swap(next model.Schema) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("server: invalid schema: %w", err)
	}
	rules, err := validation.Derive(next)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	doc, err := openapi.Export(context.Background(), next)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("server: encode openapi: %w", err)
	}
	validator, err := openapi.NewValidator(next)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	s.current.Store(&snapshot{schema: next, rules: rules, openapi: raw, validator: validator})
	s.logger.Info("schema loaded", zap.String("form", next.ID), zap.Int("fields", len(next.Fields)))
	return nil
}

// Reload fetches the configured source again and swaps it in.
func (s *Server) Reload(ctx context.Context) error {
	if s.source == nil {
		return errors.New("server: no schema source configured")
	}
	next, err := s.fetch(ctx)
	if err == nil {
		err = s.Swap(next)
	}
	s.metrics.ObserveReload(err)
	if err != nil {
		s.logger.Warn("schema reload failed", zap.String("source", s.source.Location()), zap.Error(err))
		return err
	}
	return nil
}

func (s *Server) fetch(ctx context.Context) (model.Schema, error) {
	if s.operation == "" {
		return s.loader.Load(ctx, s.source)
	}
	doc, err := s.loader.Fetch(ctx, s.source)
	if err != nil {
		return model.Schema{}, err
	}
	return openapi.ImportDocument(ctx, doc, openapi.WithOperation(s.operation), openapi.WithSchemaLoader(s.loader))
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(s.logRequests)

	r.Get("/", s.handleForm)
	r.Post("/", s.handleSubmit)
	r.Get("/schema.json", s.handleSchema)
	r.Get("/openapi.json", s.handleOpenAPI)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))))
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
