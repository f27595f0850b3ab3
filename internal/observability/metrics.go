package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion path.
type Metrics struct {
	RecordsReceived prometheus.Counter
	RecordsStored   prometheus.Counter
	InvalidPayloads prometheus.Counter
	StorageErrors   prometheus.Counter
	IngestDuration  prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsReceived,
		m.RecordsStored,
		m.InvalidPayloads,
		m.StorageErrors,
		m.IngestDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
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
		RecordsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soil_ingest",
			Name:      "records_received_total",
			Help:      "Total measurement records accepted after normalization.",
		}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soil_ingest",
			Name:      "records_stored_total",
			Help:      "Total measurement records persisted to the store.",
		}),
		InvalidPayloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soil_ingest",
			Name:      "invalid_payloads_total",
			Help:      "Total ingestion requests rejected during normalization.",
		}),
		StorageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soil_ingest",
			Name:      "storage_errors_total",
			Help:      "Total batch writes that failed at the storage layer.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "soil_ingest",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete normalize-enrich-store cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soil_ingest",
			Name:      "geocode_requests_total",
			Help:      "Reverse-geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soil_ingest",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "soil_ingest",
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soil_ingest",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}
