package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	LoginAttemptsTotal *prometheus.CounterVec
	AccessDeniedTotal  *prometheus.CounterVec
	LogoutsTotal       prometheus.Counter
	RevokedPurgedTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftflow_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiftflow_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftflow_login_attempts_total",
				Help: "Login attempts by credential flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		AccessDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftflow_access_denied_total",
				Help: "Requests rejected by the role gate",
			},
			[]string{"reason"},
		),
		LogoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftflow_logouts_total",
			Help: "Access tokens revoked through logout",
		}),
		RevokedPurgedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftflow_revoked_tokens_purged_total",
			Help: "Expired revocation rows deleted by the cleanup loop",
		}),
	}

	if registry != nil {
		registry.MustRegister(
			m.HTTPRequestsTotal,
			m.HTTPRequestDuration,
			m.LoginAttemptsTotal,
			m.AccessDeniedTotal,
			m.LogoutsTotal,
			m.RevokedPurgedTotal,
		)
	}
	return m
}

// RecordLogin counts one login attempt.
func (m *Metrics) RecordLogin(flow, outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(flow, outcome).Inc()
}

// RecordDenied counts one role gate rejection.
func (m *Metrics) RecordDenied(reason string) {
	if m == nil {
		return
	}
	m.AccessDeniedTotal.WithLabelValues(reason).Inc()
}

// RecordLogout counts one revoked token.
func (m *Metrics) RecordLogout() {
	if m == nil {
		return
	}
	m.LogoutsTotal.Inc()
}
