package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	sourcesActive  *prometheus.GaugeVec
	outputsActive  *prometheus.GaugeVec
	backupDuration *prometheus.HistogramVec
)

// durationBuckets span quick file copies through multi-minute remote
// transfers.
var durationBuckets = []float64{0.5, 1, 2, 5, 10, 20, 60, 300, 600, 1800}

// Init builds the registry and all collectors. Call once at startup,
// before any source or output is counted.
func Init() {
	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	sourcesActive = newGaugeVec(prometheus.GaugeOpts{
		Namespace: "backup",
		Name:      "sources_active",
		Help:      "Configured backup sources by source and schedule type",
	}, []string{"source_type", "schedule_type"})

	outputsActive = newGaugeVec(prometheus.GaugeOpts{
		Namespace: "backup",
		Name:      "outputs_active",
		Help:      "Configured backup outputs by output type",
	}, []string{"output_type"})

	backupDuration = newHistogramVec(prometheus.HistogramOpts{
		Namespace: "backup",
		Name:      "duration_seconds",
		Help:      "End-to-end backup duration by source type",
		Buckets:   durationBuckets,
	}, []string{"source_type"})
}

func newGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(opts, labels)
	registry.MustRegister(vec)
	return vec
}

func newHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	vec := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(vec)
	return vec
}

// SourceActive counts one configured source. The type tags are passed
// explicitly rather than read from a captured loop variable.
func SourceActive(sourceType, scheduleType string) {
	sourcesActive.WithLabelValues(sourceType, scheduleType).Inc()
}

// OutputActive counts one configured output.
func OutputActive(outputType string) {
	outputsActive.WithLabelValues(outputType).Inc()
}

// ObserveBackupDuration records one end-to-end backup duration.
func ObserveBackupDuration(sourceType string, seconds float64) {
	backupDuration.WithLabelValues(sourceType).Observe(seconds)
}

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
