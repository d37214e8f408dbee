package edit

import (
	"ferreteria_server/api/middleware"
	"ferreteria_server/handling"
	"ferreteria_server/lib"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OpenEdit handles POST /edit/{id}, loading the current row from the database
func (erm *EditRoutesManager) OpenEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid product id"), gecho.Send())
		return
	}

	view, err := session.Edit.Open(r.Context(), id)
	if err != nil {
		handling.HandleServiceError(err, "failed to open product for editing", erm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(view),
		gecho.Send(),
	)
}

func (erm *EditRoutesManager) GetEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}
	gecho.Success(w,
		gecho.WithData(session.Edit.View()),
		gecho.Send(),
	)
}

func (erm *EditRoutesManager) CancelEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	view, err := session.Edit.Cancel()
	if err != nil {
		handling.HandleServiceError(err, "failed to cancel edit", erm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(view),
		gecho.Send(),
	)
}

// SubmitEdit uploads pending photos and persists the row. The save finishes
// even if the client disconnects.
func (erm *EditRoutesManager) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.EditSubmitRequest](r)
	if err != nil {
		handling.HandleServiceError(err, "invalid edit body", erm.logger, w)
		return
	}

	saved, err := session.Edit.Submit(r.Context(), services.EditFields{
		Name:       body.Name,
		Stock:      *body.Stock,
		Zone:       body.Zone,
		SupplierID: body.SupplierID,
	})
	if err != nil {
		handling.HandleServiceError(err, "failed to save product", erm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Product saved"),
		gecho.WithData(saved),
		gecho.Send(),
	)
}
