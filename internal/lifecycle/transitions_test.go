package lifecycle

import (
	"testing"

	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
)

func TestTicketTransitionMatrix(t *testing.T) {
	allowed := map[enums.TicketStatus][]enums.TicketStatus{
		enums.TicketStatusReceived:  {enums.TicketStatusPreparing, enums.TicketStatusCancelled},
		enums.TicketStatusPreparing: {enums.TicketStatusReady, enums.TicketStatusCancelled},
		enums.TicketStatusReady:     {enums.TicketStatusDelivered, enums.TicketStatusCancelled},
		enums.TicketStatusDelivered: {enums.TicketStatusCompleted},
		enums.TicketStatusCancelled: {},
		enums.TicketStatusCompleted: {},
	}

	statuses := []enums.TicketStatus{
		enums.TicketStatusReceived,
		enums.TicketStatusPreparing,
		enums.TicketStatusReady,
		enums.TicketStatusCancelled,
		enums.TicketStatusDelivered,
		enums.TicketStatusCompleted,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := false
			for _, candidate := range allowed[from] {
				if candidate == to {
					want = true
				}
			}
			if got := CanAdvanceTicket(from, to); got != want {
				t.Errorf("CanAdvanceTicket(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestValidateTicketTransitionRejectsWithDetails(t *testing.T) {
	err := ValidateTicketTransition(enums.TicketStatusDelivered, enums.TicketStatusPreparing)
	if err == nil {
		t.Fatalf("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map got %T", typed.Details())
	}
	if details["from"] != "delivered" || details["to"] != "preparing" {
		t.Fatalf("unexpected details %+v", details)
	}
}

func TestIssueTransitionMatrix(t *testing.T) {
	cases := []struct {
		from enums.IssueStatus
		to   enums.IssueStatus
		want bool
	}{
		{enums.IssueStatusOpen, enums.IssueStatusRunnerAck, true},
		{enums.IssueStatusOpen, enums.IssueStatusResolved, true},
		{enums.IssueStatusOpen, enums.IssueStatusClientAck, false},
		{enums.IssueStatusRunnerAck, enums.IssueStatusResolved, true},
		{enums.IssueStatusRunnerAck, enums.IssueStatusOpen, false},
		{enums.IssueStatusRunnerAck, enums.IssueStatusClientAck, false},
		{enums.IssueStatusClientAck, enums.IssueStatusResolved, true},
		{enums.IssueStatusClientAck, enums.IssueStatusOpen, false},
		{enums.IssueStatusResolved, enums.IssueStatusOpen, false},
		{enums.IssueStatusResolved, enums.IssueStatusRunnerAck, false},
		{enums.IssueStatusResolved, enums.IssueStatusResolved, false},
	}
	for _, tc := range cases {
		if got := CanAdvanceIssue(tc.from, tc.to); got != tc.want {
			t.Errorf("CanAdvanceIssue(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidateIssueTransitionRejects(t *testing.T) {
	err := ValidateIssueTransition(enums.IssueStatusResolved, enums.IssueStatusOpen)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}
