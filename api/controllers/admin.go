package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/EnuliForge/kwikorder/api/responses"
	"github.com/EnuliForge/kwikorder/api/validators"
	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/internal/views"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

type resolveIssuesRequest struct {
	scopePayload
	Note *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// ResolveIssues lets an admin resolve every issue matching a scope in
// one stroke, with an optional note.
func ResolveIssues(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveIssuesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := parseScope(req.scopePayload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResolveIssues(r.Context(), lifecycle.ResolveInput{
			OrderCode:  chi.URLParam(r, "code"),
			Scope:      scope,
			ResolvedBy: enums.ResolvedByAdmin,
			Note:       req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// TableBoard returns the color status of every table that has current
// or recent activity.
func TableBoard(svc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := svc.TableBoard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, board)
	}
}

// TableStatus returns the color status of a single table.
func TableStatus(svc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table, err := strconv.Atoi(chi.URLParam(r, "table"))
		if err != nil || table < 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "table must be a positive integer"))
			return
		}

		status, err := svc.TableStatus(r.Context(), table)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
