package products

import (
	"ferreteria_server/api/middleware"
	"net/http"

	"github.com/MonkyMars/gecho"
)

func (prm *ProductRoutesManager) GetCatalogStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}
	gecho.Success(w,
		gecho.WithData(session.Status()),
		gecho.Send(),
	)
}

// ListSuppliers returns the supplier list loaded when the session started
func (prm *ProductRoutesManager) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}
	gecho.Success(w,
		gecho.WithData(session.Suppliers()),
		gecho.Send(),
	)
}
