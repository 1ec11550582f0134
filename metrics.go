package authkit

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors for the credential lifecycle
// and the request gate. A nil *Metrics disables collection; every method
// is nil-safe so call sites stay unconditional.
type Metrics struct {
	logins    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	logouts   prometheus.Counter
	gate      *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors. reg may be
// prometheus.DefaultRegisterer or a private registry; nil disables
// metrics entirely.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authkit_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authkit_refreshes_total",
				Help: "Refresh/rotation attempts by result",
			},
			[]string{"result"},
		),
		logouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authkit_logouts_total",
				Help: "Logout calls",
			},
		),
		gate: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authkit_gate_requests_total",
				Help: "Gate decisions by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.logins, m.refreshes, m.logouts, m.gate)
	return m
}

func (m *Metrics) loginResult(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) refreshResult(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) logout() {
	if m == nil {
		return
	}
	m.logouts.Inc()
}

// GateOutcome records one gate decision ("allowed", "excluded",
// "rejected"). Exported for the middleware package.
func (m *Metrics) GateOutcome(outcome string) {
	if m == nil {
		return
	}
	m.gate.WithLabelValues(outcome).Inc()
}
