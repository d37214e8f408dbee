package api

import (
	"ferreteria_server/api/auth"
	"ferreteria_server/api/debug"
	"ferreteria_server/api/edit"
	"ferreteria_server/api/events"
	"ferreteria_server/api/health"
	"ferreteria_server/api/middleware"
	"ferreteria_server/api/products"
	"ferreteria_server/config"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
)

func App(cfg *structs.Config, sm *services.ServiceManager) chi.Router {
	r := chi.NewRouter()

	// create loggers
	mwLogger := config.NewLogger(false)
	standardLogger := config.NewLogger(true)

	mw := middleware.NewMiddleware(cfg, mwLogger, sm)

	// Core infra
	r.Use(chiware.RequestID)
	r.Use(chiware.RealIP)
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(mw.SecurityHeaders())

	// Observability
	r.Use(mw.SetupLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware)

	// CORS (must be before auth / csrf)
	r.Use(mw.SetupCORS().Handler)
	r.Use(mw.RateLimitMiddleware())

	NewRouterManager(
		products.NewProductRoutesManager(standardLogger, mw),
		edit.NewEditRoutesManager(standardLogger, mw),
		events.NewEventRoutesManager(standardLogger, mw),
		health.NewHealthRoutesManager(sm.HealthService),
		auth.NewAuthRoutesManager(standardLogger, sm.AuthService, sm.CacheService, sm.SessionService, cfg, mw),
		debug.NewDebugRoutesManager(standardLogger, sm.CacheService),
	).RegisterRoutes(r)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gecho.Success(w,
			gecho.WithMessage("Welcome to the "+cfg.Server.AppName+" API"),
			gecho.Send(),
		)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.Send(),
		)
	})

	return r
}
