// Package metrics provides Prometheus instrumentation for tracked values.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tracked-dev/tracked/pkg/tracked"
)

// Config configures the Prometheus metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "tracked").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// defaultConfig returns the default metrics configuration.
func defaultConfig() Config {
	return Config{
		Namespace:   "tracked",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for a tracked value.
//
// Metrics collected:
//   - tracked_changes_total: Counter of change notifications delivered
//   - tracked_releases_total: Counter of mutation releases by outcome
//   - tracked_notify_duration_seconds: Histogram of notification round duration
//   - tracked_listeners: Gauge of registered listeners
type Metrics struct {
	changesTotal   prometheus.Counter
	releasesTotal  *prometheus.CounterVec
	notifyDuration prometheus.Histogram
	listeners      prometheus.Gauge
}

// New creates the metrics, registering them with the configured registry.
//
// Example:
//
//	m := metrics.New(metrics.WithNamespace("myapp"))
//	tr.AddListener("metrics", metrics.Observe[Doc](m, nil))
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		changesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "changes_total",
			Help:        "Total number of change notifications delivered to the metrics listener",
			ConstLabels: config.ConstLabels,
		}),

		releasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "releases_total",
			Help:        "Total number of mutation handle releases by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		notifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_duration_seconds",
			Help:        "Duration of mutation release including the notification round",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		listeners: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listeners",
			Help:        "Number of registered listeners",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordRelease records one mutation release and its duration.
// changed reports whether the release produced a notification round.
func (m *Metrics) RecordRelease(changed bool, d time.Duration) {
	outcome := "unchanged"
	if changed {
		outcome = "changed"
	}
	m.releasesTotal.WithLabelValues(outcome).Inc()
	m.notifyDuration.Observe(d.Seconds())
}

// SetListeners records the current number of registered listeners.
func (m *Metrics) SetListeners(n int) {
	m.listeners.Set(float64(n))
}

// Observe returns a listener that counts change notifications before
// delegating to next. next may be nil to only count.
func Observe[T any](m *Metrics, next tracked.Listener[T]) tracked.Listener[T] {
	return tracked.ListenerFunc[T](func(old, new T) {
		m.changesTotal.Inc()
		if next != nil {
			next.OnChange(old, new)
		}
	})
}
