package edit

import (
	"ferreteria_server/api/middleware"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type EditRoutesManager struct {
	logger *gecho.Logger
	mw     *middleware.Middleware
}

func NewEditRoutesManager(logger *gecho.Logger, mw *middleware.Middleware) *EditRoutesManager {
	return &EditRoutesManager{
		logger: logger,
		mw:     mw,
	}
}

func (erm *EditRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/edit", func(r chi.Router) {
		r.Use(erm.mw.SessionAuthMiddleware)
		r.Use(erm.mw.CSRFMiddleware())

		r.Get("/", erm.GetEdit)
		r.Delete("/", erm.CancelEdit)
		r.Post("/submit", erm.SubmitEdit)
		r.Put("/photos/{slot}", erm.CapturePhoto)
		r.Delete("/photos/{slot}", erm.ClearPhoto)
		r.Post("/{id}", erm.OpenEdit)
	})
}
