package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonebook_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phonebook_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authorizationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonebook_authorization_decisions_total",
		Help: "Authorization decisions by resource and outcome",
	}, []string{"resource", "action", "outcome"})

	constraintViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phonebook_constraint_violations_total",
		Help: "Writes rejected by storage uniqueness constraints",
	}, []string{"entity"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuthorization records an authorization decision.
func ObserveAuthorization(resource, action string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	authorizationDecisions.WithLabelValues(resource, action, outcome).Inc()
}

// ObserveConstraintViolation counts a uniqueness conflict on the named
// entity.
func ObserveConstraintViolation(entity string) {
	constraintViolations.WithLabelValues(entity).Inc()
}
