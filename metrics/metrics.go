// Package metrics exports Prometheus metrics for the HTTP surface and for the
// upstream fetches driven by the controller:
//   - http_request_total, http_request_duration_seconds, http_request_in_flight
//   - catalog_fetch_total{collection,outcome}, catalog_fetch_duration_seconds
//   - catalog_stale_responses_total{collection}
//   - catalog_mutation_total{operation,outcome}
//   - catalog_selected_drugs, catalog_favorite_drugs
//
// Everything is registered with the default registry at init.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
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
			Help: "Number of per-client rate limiter buckets",
		},
	)

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_total",
			Help: "Upstream collection fetches by outcome",
		},
		[]string{"collection", "outcome"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Upstream collection fetch latency",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collection"},
	)

	StaleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_stale_responses_total",
			Help: "Fetch responses discarded because a newer fetch was issued",
		},
		[]string{"collection"},
	)

	MutationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_mutation_total",
			Help: "Create/update/delete calls sent upstream by outcome",
		},
		[]string{"operation", "outcome"},
	)

	SelectedDrugs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_selected_drugs",
			Help: "Drugs currently selected",
		},
	)

	FavoriteDrugs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_favorite_drugs",
			Help: "Drugs currently marked favorite",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestTotals,
		HTTPRequestDuration,
		HTTPRequestInFlight,
		RateLimiterBucketsTotal,
		FetchTotal,
		FetchDuration,
		StaleResponsesTotal,
		MutationTotal,
		SelectedDrugs,
		FavoriteDrugs,
	)
}

// ObserveFetch records one resolved fetch. Stale responses are counted but
// their latency is not observed.
func ObserveFetch(collection, outcome string, elapsed time.Duration) {
	FetchTotal.WithLabelValues(collection, outcome).Inc()
	if outcome == OutcomeStale {
		StaleResponsesTotal.WithLabelValues(collection).Inc()
		return
	}
	FetchDuration.WithLabelValues(collection).Observe(elapsed.Seconds())
}

// ObserveMutation records one upstream write.
func ObserveMutation(operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	MutationTotal.WithLabelValues(operation, outcome).Inc()
}

// SetSelection publishes the selection sizes.
func SetSelection(selected, favorites int) {
	SelectedDrugs.Set(float64(selected))
	FavoriteDrugs.Set(float64(favorites))
}
