package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "bench_metrics"

// Metrics are the ingestion counters. They are registered on the registry
// passed to NewMetrics so that one-shot commands can write them to a textfile
// and the server can expose them.
type Metrics struct {
	Runs           *prometheus.CounterVec
	FilesRead      *prometheus.CounterVec
	Samples        prometheus.Counter
	DroppedSamples prometheus.Counter
	MetricsWritten *prometheus.CounterVec
	RunDuration    prometheus.Histogram
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_runs_total",
			Help:      "Ingestion runs by outcome.",
		}, []string{"outcome"}),
		FilesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_files_read_total",
			Help:      "Metric files read by format.",
		}, []string{"format"}),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_summary_samples_total",
			Help:      "TensorBoard scalar samples read.",
		}),
		DroppedSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_non_finite_samples_total",
			Help:      "TensorBoard scalar samples dropped for being NaN or infinite.",
		}),
		MetricsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_metrics_written_total",
			Help:      "Metric values produced by dataset.",
		}, []string{"dataset"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "ingest_run_duration_seconds",
			Help:      "Ingestion run latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	if registry != nil {
		registry.MustRegister(m.Runs, m.FilesRead, m.Samples, m.DroppedSamples, m.MetricsWritten, m.RunDuration)
	}
	return m
}
