package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymgate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_checkins_total",
			Help: "Total number of check-in/check-out attempts",
		},
		[]string{"direction", "status"},
	)

	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymgate_registrations_total",
			Help: "Total number of member registrations submitted",
		},
	)

	ReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymgate_reviews_total",
			Help: "Total number of admin review decisions",
		},
		[]string{"decision"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymgate_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordCheckIn(direction, status string) {
	CheckInsTotal.WithLabelValues(direction, status).Inc()
}

func RecordRegistration() {
	RegistrationsTotal.Inc()
}

func RecordReview(decision string) {
	ReviewsTotal.WithLabelValues(decision).Inc()
}
