package controllers

import (
	"net/http"

	"github.com/EnuliForge/kwikorder/api/responses"
	"github.com/EnuliForge/kwikorder/pkg/db"
	pkgerrors "github.com/EnuliForge/kwikorder/pkg/errors"
	"github.com/EnuliForge/kwikorder/pkg/logger"
	"github.com/EnuliForge/kwikorder/pkg/redis"
)

// HealthLive reports that the process is up, nothing more.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"service": "ok"})
	}
}

// HealthReady reports readiness of the service and its dependencies.
func HealthReady(database db.Pinger, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := map[string]string{"service": "ok"}

		if database != nil {
			if err := database.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
			status["database"] = "ok"
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
			status["redis"] = "ok"
		}

		responses.WriteSuccess(w, status)
	}
}
