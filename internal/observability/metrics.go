package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the forecast pipeline.
type Metrics struct {
	InvocationDuration prometheus.Histogram
	ForecastsGenerated prometheus.Counter
	StationsSkipped    prometheus.Counter
	FeaturesDefaulted  prometheus.Counter

	// SourceRequests counts which backend satisfied each row request,
	// labeled backend={store,dataset}. Diagnostic only; the forecast
	// payload never carries backend provenance.
	SourceRequests *prometheus.CounterVec

	// GroundTruth counts evaluation lookups, labeled result={hit,miss}.
	GroundTruth *prometheus.CounterVec
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.InvocationDuration,
		m.ForecastsGenerated,
		m.StationsSkipped,
		m.FeaturesDefaulted,
		m.SourceRequests,
		m.GroundTruth,
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
		InvocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hi_forecast",
			Name:      "invocation_duration_seconds",
			Help:      "Duration of one complete forecast batch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ForecastsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hi_forecast",
			Name:      "forecasts_generated_total",
			Help:      "Total per-station forecasts produced.",
		}),
		StationsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hi_forecast",
			Name:      "stations_skipped_total",
			Help:      "Stations skipped after a per-station failure.",
		}),
		FeaturesDefaulted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hi_forecast",
			Name:      "features_defaulted_total",
			Help:      "Schema features missing from a row and defaulted to zero.",
		}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hi_forecast",
			Name:      "source_requests_total",
			Help:      "Row requests satisfied, by backend.",
		}, []string{"backend"}),
		GroundTruth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hi_forecast",
			Name:      "ground_truth_lookups_total",
			Help:      "Ground-truth lookups during error evaluation, by result.",
		}, []string{"result"}),
	}
}
