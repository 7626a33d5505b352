package controllers

import (
	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
)

// scopePayload is the wire form of an issue scope. Resolution order:
// explicit ticket id beats explicit stream beats the order-wide
// fallback.
type scopePayload struct {
	TicketID *string `json:"ticket_id,omitempty"`
	Stream   *string `json:"stream,omitempty"`
}

func parseScope(payload scopePayload) (lifecycle.IssueScope, error) {
	if payload.TicketID != nil {
		id, err := uuid.Parse(*payload.TicketID)
		if err != nil {
			return lifecycle.IssueScope{}, pkgerrors.New(pkgerrors.CodeValidation, "ticket_id must be a uuid").
				WithDetails(map[string]any{"ticket_id": *payload.TicketID})
		}
		return lifecycle.TicketScope(id), nil
	}
	if payload.Stream != nil {
		stream, err := enums.ParseStream(*payload.Stream)
		if err != nil {
			return lifecycle.IssueScope{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown stream").
				WithDetails(map[string]any{"stream": *payload.Stream})
		}
		return lifecycle.StreamScope(stream), nil
	}
	return lifecycle.OrderWideScope(), nil
}
