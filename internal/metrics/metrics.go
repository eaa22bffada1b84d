// Package metrics holds the Prometheus collectors exported on the metrics port.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosocial_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nanosocial_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ToggleTotal counts graph and like toggles by resulting action.
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosocial_toggle_total",
		Help: "Total number of follow and like toggles by action",
	}, []string{"action"})

	// CompensationsTotal counts reverted first-side updates after a failed toggle.
	CompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosocial_toggle_compensations_total",
		Help: "Total number of compensating reverts by toggle kind and outcome",
	}, []string{"kind", "outcome"})

	// NotificationsEmitted counts created notifications by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosocial_notifications_emitted_total",
		Help: "Total number of notifications created",
	}, []string{"type"})

	// RateLimitRejections counts requests refused by the rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosocial_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"resource"})

	// RedisErrors counts Redis failures by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosocial_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// MediaOperations counts media store calls by operation and outcome.
	MediaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nanosocial_media_operations_total",
		Help: "Total number of media store operations",
	}, []string{"operation", "outcome"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome maps an error to the "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
