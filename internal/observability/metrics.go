package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// File outcomes recorded in FilesTotal.
const (
	OutcomeConverted = "converted"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the conversion pipeline.
type Metrics struct {
	FilesTotal        *prometheus.CounterVec // labels: outcome={converted,skipped,failed}
	MetadataCreated   prometheus.Counter
	MetadataRetracted prometheus.Counter
	ProfilesPersisted prometheus.Counter
	DegradedFields    prometheus.Counter
	PipelineRunning   prometheus.Gauge
	FileDuration      prometheus.Histogram
	BatchDuration     prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FilesTotal,
		m.MetadataCreated,
		m.MetadataRetracted,
		m.ProfilesPersisted,
		m.DegradedFields,
		m.PipelineRunning,
		m.FileDuration,
		m.BatchDuration,
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
		FilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "files_total",
			Help:      "Profile files processed, by outcome.",
		}, []string{"outcome"}),
		MetadataCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "metadata_created_total",
			Help:      "Metadata records minted and persisted.",
		}),
		MetadataRetracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "metadata_retracted_total",
			Help:      "Minted metadata records dropped after a failed insert.",
		}),
		ProfilesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "profiles_persisted_total",
			Help:      "Profile records written to the sink.",
		}),
		DegradedFields: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_etl",
			Name:      "degraded_fields_total",
			Help:      "Fields replaced by a sentinel because they were missing or malformed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "argo_etl",
			Name:      "pipeline_running",
			Help:      "1 while a batch is being converted, 0 otherwise.",
		}),
		FileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_etl",
			Name:      "file_duration_seconds",
			Help:      "Time to convert and persist one profile file.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_etl",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete batch run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 3600},
		}),
	}
}
