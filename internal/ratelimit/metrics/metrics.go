package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AuthFailures           prometheus.Counter
	AuthLockoutsTotal      prometheus.Counter
	AuthBlockedChecksTotal prometheus.Counter
	AuthLockedIdentifiers  prometheus.Gauge
	CleanupEntriesPurged   prometheus.Counter
	CleanupRunsTotal       *prometheus.CounterVec
	CleanupDurationSeconds prometheus.Histogram
}

// New registers the limiter metrics with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamsession_ratelimit_auth_failures_recorded_total",
			Help: "Total number of failed logins recorded for rate limiting",
		}),
		AuthLockoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamsession_ratelimit_auth_lockouts_total",
			Help: "Total number of client addresses locked out",
		}),
		AuthBlockedChecksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamsession_ratelimit_auth_blocked_checks_total",
			Help: "Total number of login attempts rejected by an active lockout",
		}),
		AuthLockedIdentifiers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jamsession_ratelimit_auth_locked_identifiers",
			Help: "Current number of locked client addresses (in-memory store only)",
		}),
		CleanupEntriesPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "jamsession_ratelimit_cleanup_entries_purged_total",
			Help: "Total number of stale lockout entries removed by the cleanup worker",
		}),
		CleanupRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jamsession_ratelimit_cleanup_runs_total",
			Help: "Total number of cleanup runs",
		}, []string{"status"}),
		CleanupDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "jamsession_ratelimit_cleanup_duration_seconds",
			Help: "Duration of cleanup runs in seconds",
		}),
	}
}

func (m *Metrics) IncrementAuthFailures() {
	if m != nil {
		m.AuthFailures.Inc()
	}
}

func (m *Metrics) IncrementAuthLockouts() {
	if m != nil {
		m.AuthLockoutsTotal.Inc()
	}
}

func (m *Metrics) IncrementBlockedChecks() {
	if m != nil {
		m.AuthBlockedChecksTotal.Inc()
	}
}

func (m *Metrics) SetLockedIdentifiers(count int) {
	if m != nil {
		m.AuthLockedIdentifiers.Set(float64(count))
	}
}

// ObserveCleanup records one sweep; outcome is "success" or "error".
func (m *Metrics) ObserveCleanup(outcome string, purged int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CleanupRunsTotal.WithLabelValues(outcome).Inc()
	m.CleanupDurationSeconds.Observe(elapsed.Seconds())
	m.CleanupEntriesPurged.Add(float64(purged))
}
