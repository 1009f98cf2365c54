package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API client metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmr_api_requests_total",
		Help: "Total number of requests sent to the bookmark service.",
	}, []string{"method", "endpoint", "status"})
	RequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bmr_api_request_duration_seconds",
		Help:    "Duration of requests to the bookmark service in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})
	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmr_auth_failures_total",
		Help: "Total number of requests rejected for a missing or invalid API key.",
	}, []string{"reason"})

	// Pagination metrics
	PagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmr_pages_fetched_total",
		Help: "Total number of collection pages fetched.",
	}, []string{"collection", "status"})
	StalePagesDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmr_stale_pages_dropped_total",
		Help: "Total number of page results dropped because their key was superseded.",
	}, []string{"collection"})

	// Link check metrics
	LinkChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmr_link_checks_total",
		Help: "Total number of bookmark URLs checked, by result.",
	}, []string{"result"})
)

// Status collapses an error into a label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
