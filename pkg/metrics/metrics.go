// Package metrics provides Prometheus metrics for the edge engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courtedge/courtedge/pkg/engine"
)

// EngineMetrics collects and exposes engine Prometheus metrics. It satisfies
// the engine's Observer interface.
type EngineMetrics struct {
	registry *prometheus.Registry

	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	MarketsPerEval     prometheus.Histogram

	SuppressionsTotal *prometheus.CounterVec
	AlertsTotal       *prometheus.CounterVec

	SignalEdge  prometheus.Histogram
	PendingSize prometheus.GaugeFunc
}

// New creates an engine metrics collector. pendingFn feeds the pending-queue
// gauge; nil disables it.
func New(pendingFn func() int) *EngineMetrics {
	registry := prometheus.NewRegistry()

	m := &EngineMetrics{
		registry: registry,

		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtedge_evaluations_total",
				Help: "Total fixture evaluations run",
			},
			[]string{"game"},
		),
		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "courtedge_evaluation_duration_seconds",
				Help:    "Wall time of one fixture evaluation",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		MarketsPerEval: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "courtedge_markets_per_evaluation",
				Help:    "Policy-cleared market records per evaluation",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7},
			},
		),
		SuppressionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtedge_suppressions_total",
				Help: "Markets suppressed by the decision policy",
			},
			[]string{"market", "reason"},
		),
		AlertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtedge_alerts_total",
				Help: "Alerts queued for delivery",
			},
			[]string{"market", "tier"},
		),
		SignalEdge: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "courtedge_signal_edge",
				Help:    "Capped edge of cleared totals signals",
				Buckets: prometheus.LinearBuckets(-0.12, 0.02, 13),
			},
		),
	}

	registry.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.MarketsPerEval,
		m.SuppressionsTotal,
		m.AlertsTotal,
		m.SignalEdge,
	)

	if pendingFn != nil {
		m.PendingSize = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "courtedge_pending_alerts",
				Help: "Alerts waiting for a pregame delivery window",
			},
			func() float64 { return float64(pendingFn()) },
		)
		registry.MustRegister(m.PendingSize)
	}

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EvaluationDone implements engine.Observer.
func (m *EngineMetrics) EvaluationDone(game string, markets int, d time.Duration) {
	m.EvaluationsTotal.WithLabelValues(game).Inc()
	m.EvaluationDuration.Observe(d.Seconds())
	m.MarketsPerEval.Observe(float64(markets))
}

// MarketSuppressed implements engine.Observer.
func (m *EngineMetrics) MarketSuppressed(market engine.Market, reason string) {
	m.SuppressionsTotal.WithLabelValues(string(market), reason).Inc()
}

// AlertQueued implements engine.Observer.
func (m *EngineMetrics) AlertQueued(market engine.Market, tier engine.Tier, edge float64) {
	m.AlertsTotal.WithLabelValues(string(market), string(tier)).Inc()
	if market.IsTotal() {
		m.SignalEdge.Observe(edge)
	}
}
