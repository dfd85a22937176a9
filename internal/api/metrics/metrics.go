// Package metrics defines the custom Prometheus metrics of the users API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Build one Metrics per process with New, passing the registry the /metrics
// endpoint serves. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// Metrics groups the counters recorded by handlers and middleware.
type Metrics struct {
	// LoginAttempts counts login calls.
	// Label:
	//   - result: "success", "invalid_credentials" or "error"
	LoginAttempts *prometheus.CounterVec

	// AuthenticationFailures counts requests the auth gate rejected with 401.
	// Label:
	//   - reason: "missing_header", "malformed_header", "expired" or "invalid"
	AuthenticationFailures *prometheus.CounterVec

	// AuthorizationDenied counts requests rejected with 403.
	// Label:
	//   - role: the role that was required
	AuthorizationDenied *prometheus.CounterVec

	// Operations counts user resource operations by outcome.
	// Labels:
	//   - operation: "list", "get", "create", "update" or "delete"
	//   - result: "success", "not_found", "conflict" or "error"
	Operations *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		AuthenticationFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authentication_failures_total",
				Help:      "Total number of requests rejected for missing or invalid credentials.",
			},
			[]string{"reason"},
		),
		AuthorizationDenied: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authorization_denied_total",
				Help:      "Total number of authenticated requests rejected for a missing role.",
			},
			[]string{"role"},
		),
		Operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of user resource operations, by operation and result.",
			},
			[]string{"operation", "result"},
		),
	}
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) AuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthenticationFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) Denied(role string) {
	if m == nil {
		return
	}
	m.AuthorizationDenied.WithLabelValues(role).Inc()
}

func (m *Metrics) Operation(operation, result string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, result).Inc()
}
