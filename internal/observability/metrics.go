package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// viewer service.
type Metrics struct {
	MetadataFetches      *prometheus.CounterVec // labels: domain, outcome={success,error,stale}
	MetadataFetchSeconds prometheus.Histogram

	SessionsActive   prometheus.Gauge
	SelectionChanges *prometheus.CounterVec // labels: kind={domain,variable,level}

	TileRequests *prometheus.CounterVec // labels: scheme, result={hit,miss,error}

	BoundsEvents *prometheus.CounterVec // labels: outcome={published,dropped,error}
}

// NewMetrics creates and registers all viewer metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MetadataFetches,
		m.MetadataFetchSeconds,
		m.SessionsActive,
		m.SelectionChanges,
		m.TileRequests,
		m.BoundsEvents,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MetadataFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_map",
			Name:      "metadata_fetches_total",
			Help:      "Metadata document fetches by domain and outcome.",
		}, []string{"domain", "outcome"}),
		MetadataFetchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_map",
			Name:      "metadata_fetch_duration_seconds",
			Help:      "Duration of metadata document fetches.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_map",
			Name:      "sessions_active",
			Help:      "Number of live viewer sessions.",
		}),
		SelectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_map",
			Name:      "selection_changes_total",
			Help:      "Selection transitions by kind.",
		}, []string{"kind"}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_map",
			Name:      "tile_requests_total",
			Help:      "Tile proxy requests by scheme and cache result.",
		}, []string{"scheme", "result"}),
		BoundsEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_map",
			Name:      "bounds_events_total",
			Help:      "Viewport bounds notifications by outcome.",
		}, []string{"outcome"}),
	}
}
