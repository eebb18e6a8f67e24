// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring portier.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Auth decision outcomes used as the "outcome" label of AuthDecisionsTotal.
const (
	OutcomeExcluded = "excluded"
	OutcomeMissing  = "missing"
	OutcomeRejected = "rejected"
	OutcomeResolved = "resolved"
)

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portier_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portier_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// InflightRequests tracks requests currently being served.
	InflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portier_inflight_requests",
			Help: "Requests in flight",
		},
	)

	// AuthDecisionsTotal counts authentication decisions by scheme and outcome.
	AuthDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portier_auth_decisions_total",
			Help: "Authentication decisions",
		},
		[]string{"scheme", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InflightRequests,
		AuthDecisionsTotal,
	)
}
