package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLedgerMetrics(reg)
	op := "pay_vendor"
	metrics.ObserveCommit(op, 250*time.Millisecond)
	metrics.IncCommit(op, "committed")
	metrics.IncConflict(op)
	metrics.IncRetriesExhausted(op)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "ledger_commits_total", "operation", op); err != nil {
		t.Fatalf("fetch commits: %v", err)
	} else if got != 1 {
		t.Fatalf("expected commits=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "ledger_version_conflicts_total", "operation", op); err != nil {
		t.Fatalf("fetch conflicts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected conflicts=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "ledger_retries_exhausted_total", "operation", op); err != nil {
		t.Fatalf("fetch exhausted: %v", err)
	} else if got != 1 {
		t.Fatalf("expected exhausted=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "ledger_commit_duration_seconds", "operation", op); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestLedgerMetricsNilReceiverSafe(t *testing.T) {
	var metrics *LedgerMetrics
	metrics.ObserveCommit("noop", time.Second)
	metrics.IncCommit("noop", "committed")
	metrics.IncConflict("noop")
	metrics.IncRetriesExhausted("noop")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
