package instrument

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vspec").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for case duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics is an Observer that records Prometheus metrics:
//
//   - vspec_cases_total{suite,status}: cases run, by outcome
//   - vspec_case_duration_seconds{suite}: case duration
//   - vspec_actions_total{kind,status}: act steps, by kind and outcome
//   - vspec_assertions_total{status}: assertions, by outcome
//   - vspec_failures_total{code}: failures, by error code
type Metrics struct {
	cases      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	actions    *prometheus.CounterVec
	assertions *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them. Collectors that
// are already registered, for example by an earlier suite in the same
// process, are reused.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "vspec",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
		return register(config.Registry, c)
	}

	return &Metrics{
		cases:      counter("cases_total", "Total number of test cases run", "suite", "status"),
		actions:    counter("actions_total", "Total number of act steps run", "kind", "status"),
		assertions: counter("assertions_total", "Total number of assertions evaluated", "status"),
		failures:   counter("failures_total", "Total number of failed steps by error code", "code"),
		duration: register(config.Registry, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "case_duration_seconds",
			Help:        "Test case duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"suite"})),
	}
}

// register registers c, returning the existing collector when an equal
// one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) StartCase(ctx context.Context, suite, _ string) (context.Context, func(error)) {
	start := time.Now()
	return ctx, func(err error) {
		m.duration.WithLabelValues(suite).Observe(time.Since(start).Seconds())
		m.cases.WithLabelValues(suite, status(err)).Inc()
	}
}

func (m *Metrics) StartStep(ctx context.Context, kind, _ string) (context.Context, func(error)) {
	return ctx, func(err error) {
		if kind == KindAssert {
			m.assertions.WithLabelValues(status(err)).Inc()
		} else {
			m.actions.WithLabelValues(kind, status(err)).Inc()
		}
		if err != nil {
			m.failures.WithLabelValues(errorCode(err)).Inc()
		}
	}
}
