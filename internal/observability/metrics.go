// internal/observability/metrics.go

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the dashboard
type Metrics struct {
	Events         *prometheus.CounterVec   // labels: kind, outcome={changed,unchanged,skipped,rejected}
	Renders        *prometheus.CounterVec   // labels: view={map,timeseries,png}
	RenderDuration *prometheus.HistogramVec // labels: view
	RenderCache    *prometheus.CounterVec   // labels: result={hit,miss}
	ActiveSessions prometheus.Gauge
	CatalogRegions prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Events,
		m.Renders,
		m.RenderDuration,
		m.RenderCache,
		m.ActiveSessions,
		m.CatalogRegions,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can build as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regiodash",
			Name:      "events_total",
			Help:      "User interaction events by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regiodash",
			Name:      "renders_total",
			Help:      "Views rendered, excluding cache hits.",
		}, []string{"view"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "regiodash",
			Name:      "render_duration_seconds",
			Help:      "Duration of a view render.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"view"}),
		RenderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regiodash",
			Name:      "render_cache_total",
			Help:      "Render cache lookups by result.",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "regiodash",
			Name:      "active_sessions",
			Help:      "Browser sessions currently holding a selection.",
		}),
		CatalogRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "regiodash",
			Name:      "catalog_regions",
			Help:      "Regions loaded into the catalog.",
		}),
	}
}
