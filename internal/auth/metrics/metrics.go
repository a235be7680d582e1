package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the login and session flow.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	LoginAttempts         *prometheus.CounterVec
	LoginDurationMs       prometheus.Histogram
	AccessGateDecisions   *prometheus.CounterVec
	AccessGateDurationMs  prometheus.Histogram
	AccessGateCircuitOpen prometheus.Gauge
	PortalResults         *prometheus.CounterVec
	PortalDurationMs      prometheus.Histogram
	SessionValidations    *prometheus.CounterVec
	CSRFVerifications     *prometheus.CounterVec
}

var upstreamBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000}

// New registers the auth collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamsession_login_attempts_total",
			Help: "Login attempts by outcome error code (success for issued sessions)",
		}, []string{"outcome"}),
		LoginDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jamsession_login_duration_ms",
			Help:    "End-to-end login latency in milliseconds",
			Buckets: upstreamBuckets,
		}),
		AccessGateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamsession_access_gate_decisions_total",
			Help: "Access gate decisions by reason code",
		}, []string{"reason"}),
		AccessGateDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jamsession_access_gate_duration_ms",
			Help:    "Access gate call latency in milliseconds",
			Buckets: upstreamBuckets,
		}),
		AccessGateCircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jamsession_access_gate_circuit_open",
			Help: "1 while the access gate circuit breaker is open",
		}),
		PortalResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamsession_portal_results_total",
			Help: "Credential validation results by outcome",
		}, []string{"outcome"}),
		PortalDurationMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jamsession_portal_duration_ms",
			Help:    "Portal call latency in milliseconds",
			Buckets: upstreamBuckets,
		}),
		SessionValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamsession_session_validations_total",
			Help: "Session validations by result",
		}, []string{"result"}),
		CSRFVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamsession_csrf_verifications_total",
			Help: "CSRF verifications by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementLoginAttempt(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveLoginDuration(durationMs float64) {
	if m != nil {
		m.LoginDurationMs.Observe(durationMs)
	}
}

func (m *Metrics) ObserveAccessGateDecision(reason string, durationMs float64) {
	if m != nil {
		m.AccessGateDecisions.WithLabelValues(reason).Inc()
		m.AccessGateDurationMs.Observe(durationMs)
	}
}

func (m *Metrics) SetAccessGateCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.AccessGateCircuitOpen.Set(1)
		return
	}
	m.AccessGateCircuitOpen.Set(0)
}

func (m *Metrics) ObservePortalResult(outcome string, durationMs float64) {
	if m != nil {
		m.PortalResults.WithLabelValues(outcome).Inc()
		m.PortalDurationMs.Observe(durationMs)
	}
}

func (m *Metrics) IncrementSessionValidation(result string) {
	if m != nil {
		m.SessionValidations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementCSRFVerification(result string) {
	if m != nil {
		m.CSRFVerifications.WithLabelValues(result).Inc()
	}
}
