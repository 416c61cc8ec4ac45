// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ucid"

// Metrics groups the service collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry       *prometheus.Registry
	registryOps    *prometheus.CounterVec
	writerDepth    prometheus.Gauge
	writerApplied  *prometheus.CounterVec
	workflowEvents *prometheus.CounterVec
}

// New registers every collector on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registryOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "operations_total",
			Help:      "Credential registry operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		writerDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "writer_queue_depth",
			Help:      "Registry writes waiting in the session writer queue.",
		}),
		writerApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "writer_applied_total",
			Help:      "Registry writes applied by the session writer.",
		}, []string{"outcome"}),
		workflowEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "events_total",
			Help:      "Workflow transitions by workflow and event.",
		}, []string{"workflow", "event"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.registryOps,
		m.writerDepth,
		m.writerApplied,
		m.workflowEvents,
	)
	return m
}

// Gatherer exposes the underlying registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RegistryOp(op string, ok bool) {
	if m == nil {
		return
	}
	m.registryOps.WithLabelValues(op, outcome(ok)).Inc()
}

func (m *Metrics) RegistryError(op string) {
	if m == nil {
		return
	}
	m.registryOps.WithLabelValues(op, "error").Inc()
}

func (m *Metrics) WriterDepth(n int) {
	if m == nil {
		return
	}
	m.writerDepth.Set(float64(n))
}

func (m *Metrics) WriterApplied(ok bool) {
	if m == nil {
		return
	}
	m.writerApplied.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) WorkflowEvent(workflow, event string) {
	if m == nil {
		return
	}
	m.workflowEvents.WithLabelValues(workflow, event).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
