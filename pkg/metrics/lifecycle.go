package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics counts the domain events the engine commits.
type LifecycleMetrics struct {
	ticketTransitions *prometheus.CounterVec
	issuesOpened      *prometheus.CounterVec
	issuesResolved    *prometheus.CounterVec
	ordersClosed      prometheus.Counter
	conflicts         prometheus.Counter
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	ticketTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_transitions_total",
		Help: "Committed ticket status transitions.",
	}, []string{"stream", "to"})
	issuesOpened := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "issues_opened_total",
		Help: "Issues created.",
	}, []string{"type"})
	issuesResolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "issues_resolved_total",
		Help: "Issues resolved.",
	}, []string{"resolved_by"})
	ordersClosed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_closed_total",
		Help: "Orders that met all closing conditions.",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticket_conflicts_total",
		Help: "Optimistic concurrency losses on ticket updates.",
	})
	reg.MustRegister(ticketTransitions, issuesOpened, issuesResolved, ordersClosed, conflicts)
	return &LifecycleMetrics{
		ticketTransitions: ticketTransitions,
		issuesOpened:      issuesOpened,
		issuesResolved:    issuesResolved,
		ordersClosed:      ordersClosed,
		conflicts:         conflicts,
	}
}

// ObserveTicketTransition records a committed ticket transition.
func (m *LifecycleMetrics) ObserveTicketTransition(stream, to string) {
	if m == nil || m.ticketTransitions == nil {
		return
	}
	m.ticketTransitions.WithLabelValues(normalizeLabel(stream), normalizeLabel(to)).Inc()
}

// ObserveIssueOpened records a created issue.
func (m *LifecycleMetrics) ObserveIssueOpened(issueType string) {
	if m == nil || m.issuesOpened == nil {
		return
	}
	m.issuesOpened.WithLabelValues(normalizeLabel(issueType)).Inc()
}

// ObserveIssuesResolved records resolved issues.
func (m *LifecycleMetrics) ObserveIssuesResolved(resolvedBy string, count int) {
	if m == nil || m.issuesResolved == nil {
		return
	}
	m.issuesResolved.WithLabelValues(normalizeLabel(resolvedBy)).Add(float64(count))
}

// ObserveOrderClosed records an order close.
func (m *LifecycleMetrics) ObserveOrderClosed() {
	if m == nil || m.ordersClosed == nil {
		return
	}
	m.ordersClosed.Inc()
}

// ObserveConflict records an optimistic concurrency loss.
func (m *LifecycleMetrics) ObserveConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
