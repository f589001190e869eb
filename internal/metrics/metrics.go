// Package metrics exposes the ledger's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "uniform_ledger"

// Metrics holds the collectors of one process. Safe for concurrent use; a nil
// *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stockAdded          *prometheus.CounterVec
	periodCloses        *prometheus.CounterVec
	dataQualityWarnings *prometheus.CounterVec
	reportCache         *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		stockAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_added_units_total",
			Help:      "Units received through add-stock, by education level.",
		}, []string{"education_level"}),
		periodCloses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "period_closes_total",
			Help:      "Variants processed by period close, by outcome.",
		}, []string{"outcome"}),
		dataQualityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_quality_warnings_total",
			Help:      "Data-quality findings, by kind.",
		}, []string{"kind"}),
		reportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_lookups_total",
			Help:      "Report cache lookups, by result.",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.stockAdded,
		m.periodCloses,
		m.dataQualityWarnings,
		m.reportCache,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) StockAdded(level string, quantity int) {
	if m == nil {
		return
	}
	m.stockAdded.WithLabelValues(level).Add(float64(quantity))
}

// PeriodClosed records one variant outcome: "rolled_over" or "no_movement".
func (m *Metrics) PeriodClosed(outcome string) {
	if m == nil {
		return
	}
	m.periodCloses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DataQualityWarning(kind string) {
	if m == nil {
		return
	}
	m.dataQualityWarnings.WithLabelValues(kind).Inc()
}

func (m *Metrics) ReportCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reportCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
