// Package watch exposes a tracked value over HTTP: JSON reads and writes,
// WebSocket push of change notifications, and a Prometheus metrics endpoint.
package watch

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracked-dev/tracked/pkg/metrics"
	"github.com/tracked-dev/tracked/pkg/tracked"
)

// Default tracer name for watch servers.
const defaultTracerName = "tracked-watch"

// Config configures a watch server.
type Config struct {
	// TracerName is the OpenTelemetry tracer name (default: "tracked-watch").
	TracerName string

	// Logger is the structured logger (default: slog.Default()).
	Logger *slog.Logger

	// Metrics, if set, records mutation releases and listener counts.
	Metrics *metrics.Metrics

	// Gatherer serves GET /metrics (default: prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// CheckOrigin is passed to the WebSocket upgrader.
	// If nil, the gorilla default (same-origin) applies.
	CheckOrigin func(r *http.Request) bool
}

// Option configures a watch server.
type Option func(*Config)

// WithTracerName sets the OpenTelemetry tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithGatherer sets the Prometheus gatherer served at GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Config) {
		c.Gatherer = g
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = fn
	}
}

func defaultConfig() Config {
	return Config{
		TracerName: defaultTracerName,
		Logger:     slog.Default(),
		Gatherer:   prometheus.DefaultGatherer,
	}
}

// Server exposes a single tracked value of type T.
//
// Routes:
//
//	GET /value    current value as JSON
//	PUT /value    replace the value through a scoped mutation
//	GET /watch    WebSocket; one {"old":...,"new":...} frame per change round
//	GET /metrics  Prometheus metrics
//
// The tracker supports at most one mutation handle at a time, so the server
// serializes writers with an exclusive lock and blocks concurrent readers
// for the duration of a mutation. Handlers never observe the value mid-edit.
type Server[T any] struct {
	tracker *tracked.Tracker[T, string]
	router  chi.Router

	// mu arbitrates the tracker's single-handle invariant across
	// concurrent HTTP requests: writers hold it exclusively, readers
	// share it.
	mu sync.RWMutex

	upgrader websocket.Upgrader
	tracer   trace.Tracer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewServer creates a watch server over tracker.
// The server registers WebSocket clients as listeners on the tracker, keyed
// by connection id; callers may register their own listeners alongside.
func NewServer[T any](tracker *tracked.Tracker[T, string], opts ...Option) *Server[T] {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &Server[T]{
		tracker: tracker,
		upgrader: websocket.Upgrader{
			CheckOrigin: config.CheckOrigin,
		},
		tracer:  otel.Tracer(config.TracerName),
		metrics: config.Metrics,
		logger:  config.Logger,
	}

	r := chi.NewRouter()
	r.Get("/value", s.handleGetValue)
	r.Put("/value", s.handlePutValue)
	r.Get("/watch", s.handleWatch)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server[T]) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the handler on addr.
func (s *Server[T]) ListenAndServe(addr string) error {
	s.logger.Info("watch server listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Read returns the current value, waiting out any in-flight mutation.
func (s *Server[T]) Read() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Read()
}

// Set replaces the tracked value through a scoped mutation, serialized
// against other writers. It reports whether the value changed.
func (s *Server[T]) Set(value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.tracker.Read()
	changed := !s.tracker.Equal(old, value)

	start := time.Now()
	s.tracker.Mutate(func(v *T) {
		*v = value
	})
	if s.metrics != nil {
		s.metrics.RecordRelease(changed, time.Since(start))
	}
	return changed
}

func (s *Server[T]) handleGetValue(w http.ResponseWriter, r *http.Request) {
	value := s.Read()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.Error("value encode error", "error", err)
	}
}

func (s *Server[T]) handlePutValue(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.Start(
		r.Context(),
		"tracked.put_value",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Int("tracked.listeners", s.tracker.Listeners()),
		),
	)
	defer span.End()

	var value T
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	changed := s.Set(value)

	span.SetAttributes(attribute.Bool("tracked.changed", changed))
	span.SetStatus(codes.Ok, "")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"changed": changed})
}
