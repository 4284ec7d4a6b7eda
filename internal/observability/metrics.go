package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// styling service.
type Metrics struct {
	StylingComputations prometheus.Counter
	ComputeErrors       prometheus.Counter
	ComputeDuration     prometheus.Histogram

	// Upstream data API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: resource={features,metadata}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: resource={features,metadata}
	CacheLookups     *prometheus.CounterVec   // labels: resource={features,metadata}, result={hit,miss}

	// Refresh notification metrics.
	RefreshEventsReceived prometheus.Counter
	CacheInvalidations    prometheus.Counter
	ConsumerRunning       prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StylingComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "styling_computations_total",
			Help:      "Total completed styling computations.",
		}),
		ComputeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "compute_errors_total",
			Help:      "Total styling computations that failed.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "choropleth",
			Name:      "compute_duration_seconds",
			Help:      "Duration of a complete fetch-and-style computation.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "upstream_requests_total",
			Help:      "Data API requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "choropleth",
			Name:      "upstream_request_duration_seconds",
			Help:      "Data API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"resource"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "cache_lookups_total",
			Help:      "Feature and metadata cache lookups by result.",
		}, []string{"resource", "result"}),
		RefreshEventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "refresh_events_received_total",
			Help:      "Dataset refresh notifications consumed from Kafka.",
		}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choropleth",
			Name:      "cache_invalidations_total",
			Help:      "Cache entries invalidated by refresh notifications.",
		}),
		ConsumerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "choropleth",
			Name:      "refresh_consumer_running",
			Help:      "1 when the refresh consumer is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.StylingComputations,
		m.ComputeErrors,
		m.ComputeDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.RefreshEventsReceived,
		m.CacheInvalidations,
		m.ConsumerRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		StylingComputations:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "choropleth", Name: "styling_computations_total"}),
		ComputeErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "choropleth", Name: "compute_errors_total"}),
		ComputeDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "choropleth", Name: "compute_duration_seconds"}),
		UpstreamRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "choropleth", Name: "upstream_requests_total"}, []string{"resource", "outcome"}),
		UpstreamDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "choropleth", Name: "upstream_request_duration_seconds"}, []string{"resource"}),
		CacheLookups:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "choropleth", Name: "cache_lookups_total"}, []string{"resource", "result"}),
		RefreshEventsReceived: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "choropleth", Name: "refresh_events_received_total"}),
		CacheInvalidations:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "choropleth", Name: "cache_invalidations_total"}),
		ConsumerRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "choropleth", Name: "refresh_consumer_running"}),
	}
}
