package lifecycle

import (
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
)

// The transition tables are the single authority on allowed status
// changes. Every mutation consults them; no surface re-implements the
// rules.

var ticketTransitions = map[enums.TicketStatus][]enums.TicketStatus{
	enums.TicketStatusReceived:  {enums.TicketStatusPreparing, enums.TicketStatusCancelled},
	enums.TicketStatusPreparing: {enums.TicketStatusReady, enums.TicketStatusCancelled},
	enums.TicketStatusReady:     {enums.TicketStatusDelivered, enums.TicketStatusCancelled},
	enums.TicketStatusDelivered: {enums.TicketStatusCompleted},
	enums.TicketStatusCancelled: {},
	enums.TicketStatusCompleted: {},
}

// client_ack has no inbound edge here: it survives only as a stored
// legacy marker equivalent to runner_ack, and resolves the same way.
var issueTransitions = map[enums.IssueStatus][]enums.IssueStatus{
	enums.IssueStatusOpen:      {enums.IssueStatusRunnerAck, enums.IssueStatusResolved},
	enums.IssueStatusRunnerAck: {enums.IssueStatusResolved},
	enums.IssueStatusClientAck: {enums.IssueStatusResolved},
	enums.IssueStatusResolved:  {},
}

// CanAdvanceTicket reports whether the ticket edge exists.
func CanAdvanceTicket(from, to enums.TicketStatus) bool {
	for _, candidate := range ticketTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ValidateTicketTransition returns a state-conflict error carrying the
// attempted pair when the edge is not allowed.
func ValidateTicketTransition(from, to enums.TicketStatus) error {
	if CanAdvanceTicket(from, to) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "ticket transition not allowed").
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}

// CanAdvanceIssue reports whether the issue edge exists.
func CanAdvanceIssue(from, to enums.IssueStatus) bool {
	for _, candidate := range issueTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ValidateIssueTransition returns a state-conflict error carrying the
// attempted pair when the edge is not allowed.
func ValidateIssueTransition(from, to enums.IssueStatus) error {
	if CanAdvanceIssue(from, to) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "issue transition not allowed").
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}
