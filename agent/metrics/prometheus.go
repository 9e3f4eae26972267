// Package metrics provides Prometheus metrics export for the conversation
// agent.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exports agent metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Turn metrics
	turnLatency *prometheus.HistogramVec
	turnsTotal  *prometheus.CounterVec

	// Session metrics
	sessionsActive prometheus.Gauge

	// Command metrics
	commandsTotal *prometheus.CounterVec

	// Intent metrics
	intentsTotal *prometheus.CounterVec

	// Escalation and plan metrics
	escalationsTotal prometheus.Counter
	plansCreated     *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.turnLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "planwise",
			Subsystem: "agent",
			Name:      "turn_latency_seconds",
			Help:      "Turn processing latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"state"},
	)

	e.turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planwise",
			Subsystem: "agent",
			Name:      "turns_total",
			Help:      "Total number of processed turns",
		},
		[]string{"state", "status"},
	)

	e.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "planwise",
			Subsystem: "agent",
			Name:      "sessions_active",
			Help:      "Number of sessions with a live brain",
		},
	)

	e.commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planwise",
			Subsystem: "agent",
			Name:      "commands_total",
			Help:      "Total command dispatches by outcome",
		},
		[]string{"command", "status"},
	)

	e.intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planwise",
			Subsystem: "agent",
			Name:      "intents_total",
			Help:      "Total classified intents by category",
		},
		[]string{"category"},
	)

	e.escalationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "planwise",
			Subsystem: "agent",
			Name:      "escalations_total",
			Help:      "Total human-escalation offers",
		},
	)

	e.plansCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planwise",
			Subsystem: "agent",
			Name:      "plans_created_total",
			Help:      "Total media plans created",
		},
		[]string{"strategy"},
	)

	registry.MustRegister(
		e.turnLatency,
		e.turnsTotal,
		e.sessionsActive,
		e.commandsTotal,
		e.intentsTotal,
		e.escalationsTotal,
		e.plansCreated,
	)

	return e
}

// RecordTurn records one processed turn.
func (e *PrometheusExporter) RecordTurn(state string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.turnsTotal.WithLabelValues(state, status).Inc()
	e.turnLatency.WithLabelValues(state).Observe(latency.Seconds())
}

// RecordCommand records a command dispatch outcome: executed, gated or
// error.
func (e *PrometheusExporter) RecordCommand(command, status string) {
	e.commandsTotal.WithLabelValues(command, status).Inc()
}

// RecordIntent records a classified intent category.
func (e *PrometheusExporter) RecordIntent(category string) {
	e.intentsTotal.WithLabelValues(category).Inc()
}

// RecordEscalation records a human-escalation offer.
func (e *PrometheusExporter) RecordEscalation() {
	e.escalationsTotal.Inc()
}

// RecordPlanCreated records a plan creation under a strategy ("" allowed).
func (e *PrometheusExporter) RecordPlanCreated(strategy string) {
	if strategy == "" {
		strategy = "unset"
	}
	e.plansCreated.WithLabelValues(strategy).Inc()
}

// SessionOpened and SessionClosed move the active-session gauge.
func (e *PrometheusExporter) SessionOpened() { e.sessionsActive.Inc() }
func (e *PrometheusExporter) SessionClosed() { e.sessionsActive.Dec() }

// Handler returns the HTTP handler serving the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
