package auth

import (
	"ferreteria_server/api/middleware"
	"ferreteria_server/services"
	"ferreteria_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AuthRoutesManager struct {
	logger         *gecho.Logger
	authService    *services.AuthService
	cacheService   *services.CacheService
	sessionService *services.SessionService
	cfg            *structs.Config
	mw             *middleware.Middleware
}

func NewAuthRoutesManager(
	logger *gecho.Logger,
	authService *services.AuthService,
	cacheService *services.CacheService,
	sessionService *services.SessionService,
	cfg *structs.Config,
	mw *middleware.Middleware,
) *AuthRoutesManager {
	return &AuthRoutesManager{
		logger:         logger,
		authService:    authService,
		cacheService:   cacheService,
		sessionService: sessionService,
		cfg:            cfg,
		mw:             mw,
	}
}

func (arm *AuthRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		// CSRF token endpoint (must be called before login)
		r.Get("/csrf", arm.HandleCSRF)

		r.Group(func(r chi.Router) {
			r.Use(arm.mw.CSRFMiddleware())
			r.Post("/login", arm.HandleLogin)
			r.Post("/logout", arm.HandleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(arm.mw.SessionAuthMiddleware)
			r.Get("/session", arm.HandleSession)
		})
	})
}
