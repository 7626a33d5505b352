package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLifecycleMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)

	m.ObserveTicketTransition("food", "ready")
	m.ObserveTicketTransition("food", "ready")
	m.ObserveIssueOpened("cold")
	m.ObserveIssuesResolved("admin", 3)
	m.ObserveOrderClosed()
	m.ObserveConflict()

	if got := testutil.ToFloat64(m.ticketTransitions.WithLabelValues("food", "ready")); got != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.issuesResolved.WithLabelValues("admin")); got != 3 {
		t.Fatalf("expected 3 resolved, got %v", got)
	}
	if got := testutil.ToFloat64(m.ordersClosed); got != 1 {
		t.Fatalf("expected 1 closed, got %v", got)
	}
}

func TestLifecycleMetricsNilSafe(t *testing.T) {
	var m *LifecycleMetrics
	m.ObserveTicketTransition("food", "ready")
	m.ObserveOrderClosed()

	empty := NewLifecycleMetrics(nil)
	empty.ObserveConflict()
}
