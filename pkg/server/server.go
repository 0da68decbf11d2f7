// Package server exposes the prediction form and its JSON API over HTTP.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-laptopprice/api"
	"github.com/goliatone/go-laptopprice/components/choices"
	"github.com/goliatone/go-laptopprice/internal/logging"
	"github.com/goliatone/go-laptopprice/pkg/dataset"
	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	"github.com/goliatone/go-laptopprice/pkg/metrics"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/render"
	"github.com/goliatone/go-laptopprice/pkg/renderers/vanilla"
)

const defaultMaxBodyBytes int64 = 1 << 20

// Service is the subset of the orchestrator the handlers depend on.
type Service interface {
	Render(ctx context.Context, req orchestrator.Request) ([]byte, error)
	Predict(ctx context.Context, raw feature.RawInputs) inference.Result
	Renderer(name string) (render.Renderer, error)
	Registry() *render.Registry
}

var _ Service = (*orchestrator.Orchestrator)(nil)

// Option configures a Server.
type Option func(*Server)

// WithLogger routes request logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = &logging.Logger{Logger: logger}
		}
	}
}

// WithMetrics records request activity into recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(s *Server) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithMetricsHandler exposes handler on GET /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = handler
	}
}

// WithRateLimit bounds prediction routes to rps requests per second with the
// given burst. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithDocument replaces the document served on GET /openapi.yaml.
func WithDocument(document []byte) Option {
	return func(s *Server) {
		if len(document) > 0 {
			s.document = document
		}
	}
}

// WithAssets replaces the files served under /assets/.
func WithAssets(assets fs.FS) Option {
	return func(s *Server) {
		if assets != nil {
			s.assets = assets
		}
	}
}

// WithMaxBodyBytes caps request bodies on prediction routes.
func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBodyBytes = limit
		}
	}
}

// WithTheme sets the theme used when a request does not select one.
func WithTheme(name, variant string) Option {
	return func(s *Server) {
		s.themeName = name
		s.themeVariant = variant
	}
}

// WithChoices serves the option lists on GET /api/choices/{field}.
func WithChoices(lists dataset.Choices, fns ...choices.OptionFn) Option {
	return func(s *Server) {
		s.choices = choices.New(append([]choices.OptionFn{choices.WithChoices(lists)}, fns...)...)
	}
}

// Server serves the form pages and the prediction API.
type Server struct {
	service        Service
	logger         *logging.Logger
	metrics        metrics.Recorder
	metricsHandler http.Handler
	limiter        *rate.Limiter
	document       []byte
	assets         fs.FS
	maxBodyBytes   int64
	themeName      string
	themeVariant   string
	choices        *choices.Component
}

// New constructs a Server around service.
func New(service Service, options ...Option) *Server {
	s := &Server{
		service:      service,
		logger:       logging.NoopLogger(),
		metrics:      metrics.Noop{},
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.document == nil {
		s.document = api.Document()
	}
	if s.assets == nil {
		s.assets = vanilla.AssetsFS()
	}
	return s
}

// Handler returns the routed handler with recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /{$}", http.HandlerFunc(s.handleIndex), false)
	s.handle(mux, "POST /predict", http.HandlerFunc(s.handlePredictPage), true)
	s.handle(mux, "POST /api/predict", http.HandlerFunc(s.handlePredictAPI), true)
	s.handle(mux, "GET /api/form", http.HandlerFunc(s.handleFormModel), false)
	s.handle(mux, "GET /openapi.yaml", http.HandlerFunc(s.handleDocument), false)
	s.handle(mux, "GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(s.assets)), false)
	if s.choices != nil {
		s.handle(mux, s.choices.Pattern(""), s.choices.Handler(), false)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	return s.recoverer(mux)
}

func (s *Server) handle(mux *http.ServeMux, pattern string, handler http.Handler, limited bool) {
	if limited {
		handler = s.rateLimit(pattern, handler)
	}
	mux.Handle(pattern, s.instrument(pattern, handler))
}
