package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lf-go/pretsched/internal/ports"
)

// TargetMetrics records Prometheus counters and a latency histogram for
// every render call, labeled by target name and outcome.
type TargetMetrics struct {
	renderLatency *prometheus.HistogramVec
	renderTotal   *prometheus.CounterVec
}

// NewTargetMetrics registers and returns the render-call metrics.
func NewTargetMetrics() *TargetMetrics {
	return &TargetMetrics{
		renderLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pretsched_target_render_duration_seconds",
				Help:    "Duration of target adapter render calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"target", "operation"},
		),
		renderTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pretsched_target_render_total",
				Help: "Total target adapter render calls by outcome.",
			},
			[]string{"target", "operation", "status"},
		),
	}
}

type metricsTarget struct {
	next    ports.TargetTypes
	metrics *TargetMetrics
}

// MetricsMiddleware creates middleware that records render-call metrics.
func MetricsMiddleware(metrics *TargetMetrics) ports.TargetMiddleware {
	return func(next ports.TargetTypes) ports.TargetTypes {
		return &metricsTarget{next: next, metrics: metrics}
	}
}

func (m *metricsTarget) Name() string          { return m.next.Name() }
func (m *metricsTarget) SupportsGenerics() bool { return m.next.SupportsGenerics() }

func (m *metricsTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	return m.next.RenderTimeLiteral(magnitude, unit)
}

func (m *metricsTarget) RenderType(t ports.Type) (string, error) {
	return m.next.RenderType(t)
}

func (m *metricsTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	return m.observe("render_delay_body", func() (string, error) {
		return m.next.RenderDelayReactionBody(ctx, actionName, port)
	})
}

func (m *metricsTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	return m.observe("render_forward_body", func() (string, error) {
		return m.next.RenderForwardBody(ctx, actionName, port)
	})
}

func (m *metricsTarget) observe(operation string, call func() (string, error)) (string, error) {
	start := time.Now()
	out, err := call()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.metrics.renderLatency.WithLabelValues(m.next.Name(), operation).Observe(time.Since(start).Seconds())
	m.metrics.renderTotal.WithLabelValues(m.next.Name(), operation, status).Inc()

	return out, err
}
