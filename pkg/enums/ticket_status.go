package enums

import "fmt"

// TicketStatus tracks the lifecycle of a single preparation ticket.
type TicketStatus string

const (
	TicketStatusReceived  TicketStatus = "received"
	TicketStatusPreparing TicketStatus = "preparing"
	TicketStatusReady     TicketStatus = "ready"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusDelivered TicketStatus = "delivered"
	TicketStatusCompleted TicketStatus = "completed"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusReceived,
	TicketStatusPreparing,
	TicketStatusReady,
	TicketStatusCancelled,
	TicketStatusDelivered,
	TicketStatusCompleted,
}

// String implements fmt.Stringer.
func (t TicketStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TicketStatus.
func (t TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from this status.
func (t TicketStatus) IsTerminal() bool {
	return t == TicketStatusCancelled || t == TicketStatusCompleted
}

// IsTerminalSuccess reports whether the ticket finished its delivery path.
// Order closing requires every ticket to be in one of these states.
func (t TicketStatus) IsTerminalSuccess() bool {
	return t == TicketStatusDelivered || t == TicketStatusCompleted
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
