package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "scenery"

// Metrics counts conversation traffic.
type Metrics struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	postVisits    *prometheus.CounterVec
	noTransitions *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// Option configures Metrics.
type Option func(*Metrics)

// WithLogger additionally logs every event at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Metrics) { m.logger = logger }
}

// NewMetrics creates and registers the collectors. The Go runtime and
// process collectors are included.
func NewMetrics(opts ...Option) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		postVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "post_visits_total",
			Help:      "Total number of posts entered, by content kind.",
		}, []string{"kind"}),
		noTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "no_transition_total",
			Help:      "Replies that matched no rule, by input kind.",
		}, []string{"input"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transitions_total",
			Help:      "Transitions taken, by the kind of input that caused them.",
		}, []string{"input"}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.registry.MustRegister(
		m.postVisits,
		m.noTransitions,
		m.transitions,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPostEnter: func(ctx context.Context, e *domain.PostEvent) {
			m.postVisits.WithLabelValues(string(e.Kind)).Inc()
			m.debug(ctx, e)
		},
		OnPostLeave: func(ctx context.Context, e *domain.PostEvent) {
			m.transitions.WithLabelValues(e.Input.Kind.String()).Inc()
			m.debug(ctx, e)
		},
		OnNoTransition: func(ctx context.Context, e *domain.PostEvent) {
			m.noTransitions.WithLabelValues(e.Input.Kind.String()).Inc()
			m.debug(ctx, e)
		},
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) debug(ctx context.Context, e *domain.PostEvent) {
	if m.logger == nil {
		return
	}
	m.logger.DebugContext(ctx, string(e.Type),
		"session_id", e.SessionID,
		"post_id", e.PostID,
		"kind", e.Kind,
	)
}
