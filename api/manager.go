package api

import (
	"ferreteria_server/api/auth"
	"ferreteria_server/api/debug"
	"ferreteria_server/api/edit"
	"ferreteria_server/api/events"
	"ferreteria_server/api/health"
	"ferreteria_server/api/products"

	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	productRoutes *products.ProductRoutesManager
	editRoutes    *edit.EditRoutesManager
	eventRoutes   *events.EventRoutesManager
	healthRoutes  *health.HealthRoutesManager
	authRoutes    *auth.AuthRoutesManager
	debugRoutes   *debug.DebugRoutesManager
}

func NewRouterManager(
	productRoutes *products.ProductRoutesManager,
	editRoutes *edit.EditRoutesManager,
	eventRoutes *events.EventRoutesManager,
	healthRoutes *health.HealthRoutesManager,
	authRoutes *auth.AuthRoutesManager,
	debugRoutes *debug.DebugRoutesManager,
) *routerManager {
	return &routerManager{
		productRoutes: productRoutes,
		editRoutes:    editRoutes,
		eventRoutes:   eventRoutes,
		healthRoutes:  healthRoutes,
		authRoutes:    authRoutes,
		debugRoutes:   debugRoutes,
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.productRoutes.RegisterRoutes(r)
	rm.editRoutes.RegisterRoutes(r)
	rm.eventRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
	rm.authRoutes.RegisterRoutes(r)
	rm.debugRoutes.RegisterRoutes(r)
}
