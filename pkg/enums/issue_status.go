package enums

import "fmt"

// IssueStatus tracks the lifecycle of a reported problem.
type IssueStatus string

const (
	IssueStatusOpen      IssueStatus = "open"
	IssueStatusRunnerAck IssueStatus = "runner_ack"
	IssueStatusClientAck IssueStatus = "client_ack"
	IssueStatusResolved  IssueStatus = "resolved"
)

var validIssueStatuses = []IssueStatus{
	IssueStatusOpen,
	IssueStatusRunnerAck,
	IssueStatusClientAck,
	IssueStatusResolved,
}

// String implements fmt.Stringer.
func (i IssueStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IssueStatus.
func (i IssueStatus) IsValid() bool {
	for _, candidate := range validIssueStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsResolved reports whether the issue reached its terminal state.
// runner_ack and client_ack both count as unresolved; either keeps the
// order flagged until the customer (or an admin) resolves it.
func (i IssueStatus) IsResolved() bool {
	return i == IssueStatusResolved
}

// ParseIssueStatus converts raw input into an IssueStatus.
func ParseIssueStatus(value string) (IssueStatus, error) {
	for _, candidate := range validIssueStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue status %q", value)
}
