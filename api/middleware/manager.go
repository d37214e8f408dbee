package middleware

import (
	"ferreteria_server/services"
	"ferreteria_server/structs"

	"github.com/MonkyMars/gecho"
)

type Middleware struct {
	cfg            *structs.Config
	logger         *gecho.Logger
	authService    *services.AuthService
	cacheService   *services.CacheService
	sessionService *services.SessionService
}

func NewMiddleware(cfg *structs.Config, logger *gecho.Logger, sm *services.ServiceManager) *Middleware {
	return &Middleware{
		cfg:            cfg,
		logger:         logger,
		authService:    sm.AuthService,
		cacheService:   sm.CacheService,
		sessionService: sm.SessionService,
	}
}
