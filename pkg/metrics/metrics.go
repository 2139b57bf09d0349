// Package metrics exports reconciliation and component runtime metrics to Prometheus.
//
// Metrics collected:
//   - comp_reconcile_passes_total: Counter of Synchronize calls
//   - comp_reconcile_mutations_total: Counter of live-tree writes by operation
//   - comp_reconcile_duration_seconds: Histogram of Synchronize duration
//   - comp_lifecycle_events_total: Counter of mount/dismount notifications
//   - comp_actions_total: Counter of action invocations by component and action
//   - comp_renders_total: Counter of renders by component and status
//   - comp_render_duration_seconds: Histogram of render duration by component
//
// Example:
//
//	m := metrics.New(metrics.WithRegistry(reg))
//	rec := reconcile.New[*html.Node](dom.HTML{}, reconcile.WithObserver(m))
//	registry := comp.NewRegistry(comp.WithMetrics(m))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/comp/pkg/reconcile"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "comp").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
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

func defaultConfig() Config {
	return Config{
		Namespace: "comp",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records metrics. It implements reconcile.Observer.
type Collector struct {
	passes         prometheus.Counter
	mutations      *prometheus.CounterVec
	syncDuration   prometheus.Histogram
	lifecycle      *prometheus.CounterVec
	actions        *prometheus.CounterVec
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
}

var _ reconcile.Observer = (*Collector)(nil)

// New creates and registers the metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		passes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconcile_passes_total",
			Help:        "Total number of reconciliation passes",
			ConstLabels: config.ConstLabels,
		}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconcile_mutations_total",
			Help:        "Total number of live tree writes by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		syncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconcile_duration_seconds",
			Help:        "Reconciliation pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		lifecycle: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "lifecycle_events_total",
			Help:        "Total number of mount and dismount notifications",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_total",
			Help:        "Total number of component action invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "action"}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders by status",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),
	}
}

// ObserveSync records one reconciliation pass.
func (c *Collector) ObserveSync(s reconcile.Stats) {
	c.passes.Inc()
	c.syncDuration.Observe(s.Duration.Seconds())

	for op, n := range map[string]int{
		"attr_set":    s.AttrsSet,
		"attr_remove": s.AttrsRemoved,
		"text":        s.TextWrites,
		"insert":      s.Inserted,
		"move":        s.Moved,
		"remove":      s.Removed,
		"replace":     s.Replaced,
	} {
		if n > 0 {
			c.mutations.WithLabelValues(op).Add(float64(n))
		}
	}
	if s.Mounted > 0 {
		c.lifecycle.WithLabelValues(reconcile.EventMount).Add(float64(s.Mounted))
	}
	if s.Dismounted > 0 {
		c.lifecycle.WithLabelValues(reconcile.EventDismount).Add(float64(s.Dismounted))
	}
}

// ObserveAction records an action invocation.
func (c *Collector) ObserveAction(component, action string) {
	c.actions.WithLabelValues(component, action).Inc()
}

// ObserveRender records a render and its outcome.
func (c *Collector) ObserveRender(component string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.renders.WithLabelValues(component, status).Inc()
	c.renderDuration.WithLabelValues(component).Observe(d.Seconds())
}
