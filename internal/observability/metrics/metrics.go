package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	sessionValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_session_validations_total",
		Help: "Session checks by outcome",
	}, []string{"outcome"})

	passwordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_password_resets_total",
		Help: "Password reset steps by stage and result",
	}, []string{"stage", "result"})
)

// ObserveHTTPRequest records an HTTP request metric. route is the matched pattern, not the raw path.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt.
func ObserveLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// ObserveSession counts a session validation.
func ObserveSession(outcome string) {
	sessionValidations.WithLabelValues(outcome).Inc()
}

// ObservePasswordReset counts one step of the reset flow.
func ObservePasswordReset(stage, result string) {
	passwordResets.WithLabelValues(stage, result).Inc()
}
