// Package metrics exposes Prometheus collectors for the pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	lookupsTotal          *prometheus.CounterVec
	lookupDurationSeconds prometheus.Histogram
	pagesTotal            *prometheus.CounterVec
	documentsTotal        *prometheus.CounterVec
	extractionsTotal      *prometheus.CounterVec
	recordsProcessedTotal prometheus.Counter
	rateLimitDelaySeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the Prometheus collectors. It is safe to call multiple
// times; every Observe helper calls it so collection order never matters.
func Init() {
	once.Do(func() {
		lookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devicefeed_openfda_lookups_total",
				Help: "Total openFDA lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		lookupDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "devicefeed_openfda_lookup_duration_seconds",
				Help:    "Histogram of openFDA round-trip latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		)

		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devicefeed_reference_pages_total",
				Help: "Total reference pages fetched, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		documentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devicefeed_documents_total",
				Help: "Total summary documents handled, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devicefeed_extractions_total",
				Help: "Total text extractions, labeled by engine and outcome.",
			},
			[]string{"engine", "outcome"},
		)

		recordsProcessedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "devicefeed_records_processed_total",
				Help: "Total records processed by the enrichment pass.",
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devicefeed_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)
	})
}

// Handler returns an http.Handler exposing the default registry.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveLookup increments the lookup counter for the given outcome.
func ObserveLookup(outcome string) {
	Init()
	lookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLookupDuration records one openFDA round trip.
func ObserveLookupDuration(d time.Duration) {
	Init()
	lookupDurationSeconds.Observe(d.Seconds())
}

// ObservePageFetch increments the reference page counter for the outcome.
func ObservePageFetch(outcome string) {
	Init()
	pagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDocument increments the document counter for the outcome.
func ObserveDocument(outcome string) {
	Init()
	documentsTotal.WithLabelValues(outcome).Inc()
}

// ObserveExtraction increments the extraction counter for engine and outcome.
func ObserveExtraction(engine, outcome string) {
	Init()
	extractionsTotal.WithLabelValues(engine, outcome).Inc()
}

// IncRecordsProcessed counts one record through the enrichment pass.
func IncRecordsProcessed() {
	Init()
	recordsProcessedTotal.Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, d time.Duration) {
	Init()
	rateLimitDelaySeconds.WithLabelValues(domain).Observe(d.Seconds())
}
