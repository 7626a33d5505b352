package lifecycle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/pkg/enums"
)

type scopeKind int

const (
	scopeKindTicket scopeKind = iota + 1
	scopeKindStream
	scopeKindOrderWide
)

// IssueScope is the tagged variant identifying what an issue (or an
// acknowledge/resolve action) refers to: a specific ticket, a stream
// within the order, or the whole order. The zero value is invalid, and
// the ticket/stream/order-wide cases are mutually exclusive by
// construction.
type IssueScope struct {
	kind     scopeKind
	ticketID uuid.UUID
	stream   enums.Stream
}

// TicketScope targets one specific ticket.
func TicketScope(ticketID uuid.UUID) IssueScope {
	return IssueScope{kind: scopeKindTicket, ticketID: ticketID}
}

// StreamScope targets every ticket of one stream within the order.
func StreamScope(stream enums.Stream) IssueScope {
	return IssueScope{kind: scopeKindStream, stream: stream}
}

// OrderWideScope targets the order as a whole.
func OrderWideScope() IssueScope {
	return IssueScope{kind: scopeKindOrderWide}
}

// IsZero reports whether the scope was never set.
func (s IssueScope) IsZero() bool {
	return s.kind == 0
}

// TicketID returns the targeted ticket, if this is a ticket scope.
func (s IssueScope) TicketID() (uuid.UUID, bool) {
	if s.kind != scopeKindTicket {
		return uuid.Nil, false
	}
	return s.ticketID, true
}

// Stream returns the targeted stream, if this is a stream scope.
func (s IssueScope) Stream() (enums.Stream, bool) {
	if s.kind != scopeKindStream {
		return "", false
	}
	return s.stream, true
}

// IsOrderWide reports whether the scope covers the whole order.
func (s IssueScope) IsOrderWide() bool {
	return s.kind == scopeKindOrderWide
}

// String implements fmt.Stringer for log output.
func (s IssueScope) String() string {
	switch s.kind {
	case scopeKindTicket:
		return fmt.Sprintf("ticket:%s", s.ticketID)
	case scopeKindStream:
		return fmt.Sprintf("stream:%s", s.stream)
	case scopeKindOrderWide:
		return "order"
	default:
		return "unset"
	}
}
