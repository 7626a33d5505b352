package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EnuliForge/kwikorder/api/controllers"
	"github.com/EnuliForge/kwikorder/api/middleware"
	"github.com/EnuliForge/kwikorder/internal/lifecycle"
	"github.com/EnuliForge/kwikorder/internal/notify"
	"github.com/EnuliForge/kwikorder/internal/placement"
	"github.com/EnuliForge/kwikorder/internal/views"
	"github.com/EnuliForge/kwikorder/pkg/config"
	"github.com/EnuliForge/kwikorder/pkg/db"
	"github.com/EnuliForge/kwikorder/pkg/logger"
	"github.com/EnuliForge/kwikorder/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	lifecycleService lifecycle.Service,
	placementService placement.Service,
	viewsService views.Service,
	tracker *notify.Tracker,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(dbP, redisP, logg))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Customer surface. Identified by order code, no auth.
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(placementService, logg))
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(viewsService, logg))
				r.Get("/changed", controllers.OrderChanged(tracker, logg))
				r.Post("/issues", controllers.CreateIssue(lifecycleService, logg))
				r.Post("/confirm-delivery", controllers.ConfirmDelivery(lifecycleService, logg))
				r.Post("/confirm-fix", controllers.ConfirmFix(lifecycleService, logg))
				r.Post("/acknowledge", controllers.Acknowledge(lifecycleService, logg))
			})
		})

		// Station surfaces.
		r.Post("/tickets/{ticketID}/advance", controllers.AdvanceTicket(lifecycleService, logg))
		r.Get("/kitchen/{stream}/queue", controllers.StreamQueue(viewsService, logg))
		r.Get("/runner/queue", controllers.RunnerQueue(viewsService, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/orders/{code}/resolve", controllers.ResolveIssues(lifecycleService, logg))
			r.Get("/tables", controllers.TableBoard(viewsService, logg))
			r.Get("/tables/{table}", controllers.TableStatus(viewsService, logg))
		})
	})

	return r
}
