package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	Logins         prometheus.Counter
	LoginFailures  prometheus.Counter
	VerifyFailures prometheus.Counter
	Logouts        prometheus.Counter
}

// New registers and returns auth metrics collectors.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maya_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maya_login_failures_total",
			Help: "Total number of rejected login attempts",
		}),
		VerifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maya_verify_failures_total",
			Help: "Total number of rejected session verifications",
		}),
		Logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maya_logouts_total",
			Help: "Total number of logouts",
		}),
	}
}

func (m *Metrics) IncrementLogins() {
	m.Logins.Inc()
}

func (m *Metrics) IncrementLoginFailures() {
	m.LoginFailures.Inc()
}

func (m *Metrics) IncrementVerifyFailures() {
	m.VerifyFailures.Inc()
}

func (m *Metrics) IncrementLogouts() {
	m.Logouts.Inc()
}
