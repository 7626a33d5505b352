package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/EnuliForge/kwikorder/api/responses"
	"github.com/EnuliForge/kwikorder/api/validators"
	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

type advanceTicketRequest struct {
	TargetStatus string `json:"target_status" validate:"required"`
	ActorRole    string `json:"actor_role" validate:"omitempty,oneof=kitchen bar runner admin"`
}

// AdvanceTicket moves a ticket along its lifecycle. Used by kitchen and
// bar stations (preparing, ready), runners (delivered), and admins
// (cancelled).
func AdvanceTicket(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ticket id must be a uuid"))
			return
		}

		var req advanceTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseTicketStatus(req.TargetStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown target status").
				WithDetails(map[string]any{"target_status": req.TargetStatus}))
			return
		}

		ticket, err := svc.AdvanceTicket(r.Context(), lifecycle.AdvanceTicketInput{
			TicketID: ticketID,
			Target:   target,
			Actor:    lifecycle.ActorContext{Role: req.ActorRole},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}
