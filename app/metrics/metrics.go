// Package metrics declares the Prometheus collectors of the blog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PostOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_operations_total",
			Help: "Total number of post and comment operations processed",
		},
		[]string{"operation", "success"},
	)

	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Total number of authentication events",
		},
		[]string{"event", "success"},
	)

	ServiceHealth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "service_health",
			Help: "Service health status (1 = healthy, 0 = unhealthy)",
		},
	)
)

// Post operation labels.
const (
	OpCreatePost = "create_post"
	OpUpdatePost = "update_post"
	OpDeletePost = "delete_post"
	OpAddComment = "add_comment"
)

// Auth event labels.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventLogout   = "logout"
)

// RecordPostOperation counts one post or comment operation.
func RecordPostOperation(op string, err error) {
	PostOperationsTotal.WithLabelValues(op, success(err)).Inc()
}

// RecordAuthEvent counts one authentication event.
func RecordAuthEvent(event string, err error) {
	AuthEventsTotal.WithLabelValues(event, success(err)).Inc()
}

func success(err error) string {
	if err != nil {
		return "false"
	}
	return "true"
}
