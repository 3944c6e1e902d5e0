package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the Prometheus registry.
type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

func (c *MetricsConfig) SetDefaults() {
	if c.Namespace == "" {
		c.Namespace = "agentcore"
	}
}

// Metrics collects Prometheus instrumentation for the quality-gate
// pipeline, the plan step executor, and the sub-agent spawner. A nil
// *Metrics is safe to call every method on — every Record/Inc/Dec method
// checks for nil first, so instrumentation call sites never need to
// guard on whether metrics are enabled.
type Metrics struct {
	config   *MetricsConfig
	registry *prometheus.Registry

	gateLatency *prometheus.HistogramVec
	gateRuns    *prometheus.CounterVec

	stepDuration *prometheus.HistogramVec
	stepRuns     *prometheus.CounterVec

	subAgentConcurrency prometheus.Gauge
	subAgentSpawns      *prometheus.CounterVec

	loopIterations *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance from configuration. It returns a
// nil *Metrics (not an error) when metrics are disabled, matching the
// nil-safe call pattern used throughout this package.
func NewMetrics(cfg *MetricsConfig) *Metrics {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	cfg.SetDefaults()

	m := &Metrics{config: cfg, registry: prometheus.NewRegistry()}

	m.gateLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "quality",
		Name:      "gate_latency_seconds",
		Help:      "Duration of a single quality gate run.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
	}, []string{"gate_id", "phase", "status"})

	m.gateRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "quality",
		Name:      "gate_runs_total",
		Help:      "Total number of quality gate runs, by outcome.",
	}, []string{"gate_id", "phase", "status"})

	m.stepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "executor",
		Name:      "step_duration_seconds",
		Help:      "Duration of a single plan step's run through the executor.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms to ~820s
	}, []string{"persona", "status"})

	m.stepRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "executor",
		Name:      "step_runs_total",
		Help:      "Total number of plan steps run, by outcome.",
	}, []string{"persona", "status"})

	m.subAgentConcurrency = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: "subagent",
		Name:      "active_runs",
		Help:      "Number of sub-agent runs currently holding a spawner semaphore slot.",
	})

	m.subAgentSpawns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "subagent",
		Name:      "spawns_total",
		Help:      "Total number of sub-agents spawned, by type.",
	}, []string{"type"})

	m.loopIterations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "loop",
		Name:      "iterations_total",
		Help:      "Total number of agentic loop iterations run.",
	}, []string{"session_id"})

	m.registry.MustRegister(
		m.gateLatency, m.gateRuns,
		m.stepDuration, m.stepRuns,
		m.subAgentConcurrency, m.subAgentSpawns,
		m.loopIterations,
	)

	return m
}

// RecordGateRun records one quality gate's outcome and latency.
func (m *Metrics) RecordGateRun(gateID, phase, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gateLatency.WithLabelValues(gateID, phase, status).Observe(duration.Seconds())
	m.gateRuns.WithLabelValues(gateID, phase, status).Inc()
}

// RecordStepRun records one plan step's outcome and duration.
func (m *Metrics) RecordStepRun(persona, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(persona, status).Observe(duration.Seconds())
	m.stepRuns.WithLabelValues(persona, status).Inc()
}

// IncSubAgentActive increments the sub-agent concurrency gauge when a
// spawn acquires a semaphore slot.
func (m *Metrics) IncSubAgentActive(subAgentType string) {
	if m == nil {
		return
	}
	m.subAgentConcurrency.Inc()
	m.subAgentSpawns.WithLabelValues(subAgentType).Inc()
}

// DecSubAgentActive decrements the sub-agent concurrency gauge when a
// spawn releases its semaphore slot.
func (m *Metrics) DecSubAgentActive() {
	if m == nil {
		return
	}
	m.subAgentConcurrency.Dec()
}

// RecordLoopIteration records one turn of a session's agentic loop.
func (m *Metrics) RecordLoopIteration(sessionID string) {
	if m == nil {
		return
	}
	m.loopIterations.WithLabelValues(sessionID).Inc()
}

// Handler returns an HTTP handler for the Prometheus scrape endpoint. A
// nil Metrics serves 503 so a host can wire it unconditionally.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
