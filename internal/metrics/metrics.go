package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Login workflow
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_login_attempts_total",
		Help: "Total number of login submissions by outcome.",
	}, []string{"status"}) // status: "success", "invalid", "not_found", "mismatch", "failed", "in_flight"

	AuthRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_auth_requests_total",
		Help: "Total number of outbound authentication requests by outcome.",
	}, []string{"outcome"})
	AuthRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "app_auth_request_duration_seconds",
		Help:    "Duration of outbound authentication requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	SubmissionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_login_submissions_in_flight",
		Help: "Current number of login submissions waiting on the authentication endpoint.",
	})

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	HTTPResponseSizeBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Size of HTTP responses in bytes.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "path", "status"})

	// Database
	DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"query_type", "repository", "status"})
	DBQueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "db_query_errors_total",
		Help: "Total number of failed database queries.",
	}, []string{"query_type", "repository"})
)
