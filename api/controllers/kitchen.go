package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EnuliForge/kwikorder/api/responses"
	"github.com/EnuliForge/kwikorder/internal/views"
	"github.com/EnuliForge/kwikorder/pkg/enums"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
)

// StreamQueue returns the preparation queue for one stream, oldest
// first. The kitchen station polls the food queue, the bar polls
// drinks.
func StreamQueue(svc views.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stream, err := enums.ParseStream(chi.URLParam(r, "stream"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown stream").
				WithDetails(map[string]any{"stream": chi.URLParam(r, "stream")}))
			return
		}

		queue, err := svc.KitchenQueue(r.Context(), stream)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, queue)
	}
}
