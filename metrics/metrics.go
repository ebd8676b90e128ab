// Package metrics provides Prometheus metrics for the HTTP server and the
// report explainer:
//   - http_request_total, http_request_duration_seconds, http_request_in_flight
//   - rate_limiter_buckets_total
//   - reports_explained_total, terms_extracted_total, term_extraction_duration_seconds
//   - glossary_entries, glossary_reloads_total
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reload outcomes used as the result label of glossary_reloads_total
const (
	ReloadSuccess = "success"
	ReloadFailure = "failure"
	ReloadSkipped = "skipped"
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

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	ReportsExplainedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_explained_total",
			Help: "Reports run through term extraction",
		},
	)

	TermsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terms_extracted_total",
			Help: "Glossary terms found in reports, by category",
		},
		[]string{"category"},
	)

	TermExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "term_extraction_duration_seconds",
			Help:    "Time spent extracting terms and deriving actions for one report",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	GlossaryEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glossary_entries",
			Help: "Entries in the glossary currently in service",
		},
	)

	GlossaryReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glossary_reloads_total",
			Help: "Glossary load attempts by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ReportsExplainedTotal)
	prometheus.MustRegister(TermsExtractedTotal)
	prometheus.MustRegister(TermExtractionDuration)
	prometheus.MustRegister(GlossaryEntries)
	prometheus.MustRegister(GlossaryReloadsTotal)
}

// RecordExplanation counts one explained report and the categories of the terms found in it.
func RecordExplanation(categories []string, elapsed time.Duration) {
	ReportsExplainedTotal.Inc()
	TermExtractionDuration.Observe(elapsed.Seconds())
	for _, c := range categories {
		TermsExtractedTotal.WithLabelValues(c).Inc()
	}
}

// RecordReload counts a reload attempt. entries is only used on success.
func RecordReload(result string, entries int) {
	GlossaryReloadsTotal.WithLabelValues(result).Inc()
	if result == ReloadSuccess {
		GlossaryEntries.Set(float64(entries))
	}
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
