package products

import (
	"ferreteria_server/api/middleware"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ProductRoutesManager struct {
	logger *gecho.Logger
	mw     *middleware.Middleware
}

func NewProductRoutesManager(logger *gecho.Logger, mw *middleware.Middleware) *ProductRoutesManager {
	return &ProductRoutesManager{
		logger: logger,
		mw:     mw,
	}
}

func (prm *ProductRoutesManager) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(prm.mw.SessionAuthMiddleware)
		r.Use(prm.mw.CSRFMiddleware())

		r.Get("/catalog/status", prm.GetCatalogStatus)
		r.Get("/products/search", prm.SearchProducts)
		r.Post("/products/scan", prm.ScanProduct)
		r.Get("/suppliers", prm.ListSuppliers)
	})
}
