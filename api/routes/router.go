package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shipdesk-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/shipdesk-backend/api/controllers/orders"
	"github.com/angelmondragon/shipdesk-backend/api/middleware"
	"github.com/angelmondragon/shipdesk-backend/pkg/config"
	"github.com/angelmondragon/shipdesk-backend/pkg/db"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       redis.Pinger
	Idempotency redis.IdempotencyStore
	Orders      ordercontrollers.Service
	Metrics     prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.Dependency{Name: "db", Pinger: deps.DB},
			controllers.Dependency{Name: "redis", Pinger: deps.Redis},
		))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireClient(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Idempotency(deps.Idempotency, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Post("/bulk-delete", ordercontrollers.BulkDelete(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
		})
	})

	return r
}
