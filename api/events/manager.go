package events

import (
	"ferreteria_server/api/middleware"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

const (
	listenerBuffer    = 32
	keepAliveInterval = 25 * time.Second
)

type EventRoutesManager struct {
	logger *gecho.Logger
	mw     *middleware.Middleware
}

func NewEventRoutesManager(logger *gecho.Logger, mw *middleware.Middleware) *EventRoutesManager {
	return &EventRoutesManager{
		logger: logger,
		mw:     mw,
	}
}

func (erm *EventRoutesManager) RegisterRoutes(r chi.Router) {
	r.With(erm.mw.SessionAuthMiddleware).Get("/events", erm.Stream)
}
