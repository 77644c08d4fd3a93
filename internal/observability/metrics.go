package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment pipeline.
type Metrics struct {
	RowsRead         prometheus.Counter
	RowsJoined       prometheus.Counter
	RowsDropped      prometheus.Counter // location rows with no matching trip
	SummariesEmitted prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Archive sampling metrics.
	SampleRequests *prometheus.CounterVec   // labels: variable={temperature,wind,aerosol}, outcome={ok,empty,error}
	SampleCache    *prometheus.CounterVec   // labels: variable, result={hit,miss}
	PassDuration   *prometheus.HistogramVec // labels: variable
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsRead,
		m.RowsJoined,
		m.RowsDropped,
		m.SummariesEmitted,
		m.PipelineRunning,
		m.SampleRequests,
		m.SampleCache,
		m.PassDuration,
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
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trip_etl",
			Name:      "rows_read_total",
			Help:      "Location rows read from the raw input file.",
		}),
		RowsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trip_etl",
			Name:      "rows_joined_total",
			Help:      "Enriched rows that matched a trip during the join.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trip_etl",
			Name:      "rows_dropped_total",
			Help:      "Enriched rows dropped by inner-join semantics.",
		}),
		SummariesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trip_etl",
			Name:      "summaries_emitted_total",
			Help:      "Per-trip summary rows written.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trip_etl",
			Name:      "pipeline_running",
			Help:      "1 while the enrichment pipeline is active.",
		}),
		SampleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trip_etl",
			Name:      "sample_requests_total",
			Help:      "Archive point queries by variable and outcome.",
		}, []string{"variable", "outcome"}),
		SampleCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trip_etl",
			Name:      "sample_cache_total",
			Help:      "Sample cache lookups by variable and result.",
		}, []string{"variable", "result"}),
		PassDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trip_etl",
			Name:      "pass_duration_seconds",
			Help:      "Duration of one full enrichment pass over the input.",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600, 7200},
		}, []string{"variable"}),
	}
}
