package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UsersCreated   prometheus.Counter
	Logins         prometheus.Counter
	TokenRefreshes prometheus.Counter
	AuthFailures   prometheus.Counter
	ActiveSessions prometheus.Gauge
	ResetRequests  prometheus.Counter
	ResetCompleted prometheus.Counter

	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "featstack_users_created_total",
			Help: "Total number of users created",
		}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "featstack_logins_total",
			Help: "Total number of successful logins",
		}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "featstack_token_refreshes_total",
			Help: "Total number of successful token refreshes",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "featstack_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "featstack_active_sessions",
			Help: "Current number of active refresh sessions",
		}),
		ResetRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "featstack_password_reset_requests_total",
			Help: "Total number of password reset requests",
		}),
		ResetCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "featstack_password_resets_completed_total",
			Help: "Total number of completed password resets",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "featstack_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementLogins() {
	m.Logins.Inc()
}

func (m *Metrics) IncrementTokenRefreshes() {
	m.TokenRefreshes.Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementActiveSessions(count int) {
	m.ActiveSessions.Add(float64(count))
}

func (m *Metrics) DecrementActiveSessions(count int) {
	m.ActiveSessions.Sub(float64(count))
}

func (m *Metrics) IncrementResetRequests() {
	m.ResetRequests.Inc()
}

func (m *Metrics) IncrementResetCompleted() {
	m.ResetCompleted.Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
