// Package metrics holds the Prometheus collectors for scans.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// File outcomes.
const (
	OutcomeRecorded = "recorded"
	OutcomeSkipped  = "skipped"
	OutcomeIO       = "io"
	OutcomeParse    = "parse"
	OutcomeTimeout  = "timeout"
)

var (
	// Registry is private to markscan so tests and the server see only
	// these collectors.
	Registry = prometheus.NewRegistry()

	filesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "markscan",
		Name:      "files_processed_total",
		Help:      "Source files processed, by outcome.",
	}, []string{"outcome"})

	recordsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "markscan",
		Name:      "records_total",
		Help:      "Module and component records emitted, by kind and status.",
	}, []string{"kind", "status"})

	scanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "markscan",
		Name:      "scan_duration_seconds",
		Help:      "Wall time of complete workspace scans.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(filesProcessed, recordsEmitted, scanDuration)
}

// FileProcessed counts one file with the given outcome.
func FileProcessed(outcome string) {
	filesProcessed.WithLabelValues(outcome).Inc()
}

// RecordEmitted counts one record. kind is "module" or "component".
func RecordEmitted(kind, status string) {
	recordsEmitted.WithLabelValues(kind, status).Inc()
}

// ScanFinished observes a scan's duration; result is "ok" or "error".
func ScanFinished(result string, d time.Duration) {
	scanDuration.WithLabelValues(result).Observe(d.Seconds())
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
