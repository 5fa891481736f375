package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records commit outcomes for wallet ledger operations.
type LedgerMetrics struct {
	duration  *prometheus.HistogramVec
	commits   *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	exhausted *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_commit_duration_seconds",
		Help:    "Duration of ledger commit attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_commits_total",
		Help: "Committed ledger operations by type and result.",
	}, []string{"operation", "result"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_version_conflicts_total",
		Help: "Balance version conflicts that triggered a retry.",
	}, []string{"operation"})
	exhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_retries_exhausted_total",
		Help: "Operations that gave up after the configured commit attempts.",
	}, []string{"operation"})
	reg.MustRegister(duration, commits, conflicts, exhausted)
	return &LedgerMetrics{
		duration:  duration,
		commits:   commits,
		conflicts: conflicts,
		exhausted: exhausted,
	}
}

// ObserveCommit records the duration for an operation attempt.
func (m *LedgerMetrics) ObserveCommit(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncCommit increments the commit counter for the operation with the given result.
func (m *LedgerMetrics) IncCommit(operation, result string) {
	if m == nil || m.commits == nil {
		return
	}
	m.commits.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// IncConflict increments the version conflict counter for the operation.
func (m *LedgerMetrics) IncConflict(operation string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncRetriesExhausted increments the exhausted retries counter for the operation.
func (m *LedgerMetrics) IncRetriesExhausted(operation string) {
	if m == nil || m.exhausted == nil {
		return
	}
	m.exhausted.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
