// Package metrics provides Prometheus metrics for the HTTP surface:
//   - http_request_total: counter with method, path, and status labels
//   - http_request_duration_seconds: histogram with method and path labels
//   - http_request_in_flight: gauge for concurrent requests
//   - pgx_analyses_total: counter with format and outcome labels
//   - pgx_markers_parsed: histogram of markers found per upload
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNoMatch     = "no_match"
	OutcomeFormatError = "format_error"
	OutcomeError       = "error"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgx_analyses_total",
			Help: "Uploaded files analyzed, by detected format and outcome",
		},
		[]string{"format", "outcome"},
	)

	MarkersParsed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pgx_markers_parsed",
			Help:    "Markers parsed per analyzed upload",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(MarkersParsed)
}

// RecordAnalysis counts one analysis. markers is ignored for failed
// analyses.
func RecordAnalysis(format, outcome string, markers int) {
	if format == "" {
		format = "unknown"
	}
	AnalysesTotal.WithLabelValues(format, outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeNoMatch {
		MarkersParsed.Observe(float64(markers))
	}
}
