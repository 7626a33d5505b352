package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EnuliForge/kwikorder/api/responses"
	"github.com/EnuliForge/kwikorder/api/validators"
	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/internal/views"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

// RunnerQueue returns the runner's combined work list: unresolved
// issues newest first, then ready tickets oldest first.
func RunnerQueue(svc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queue, err := svc.RunnerQueue(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, queue)
	}
}

type acknowledgeRequest struct {
	scopePayload
}

// Acknowledge marks the issues matching a scope as seen by the runner,
// or records a proactive runner flag when no issue exists yet.
func Acknowledge(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req acknowledgeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := parseScope(req.scopePayload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RunnerAcknowledge(r.Context(), lifecycle.AcknowledgeInput{
			OrderCode: chi.URLParam(r, "code"),
			Scope:     scope,
			Actor:     lifecycle.ActorContext{Role: "runner"},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
