package products

import (
	"ferreteria_server/api/middleware"
	"ferreteria_server/catalog"
	"ferreteria_server/handling"
	"ferreteria_server/lib"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"net/http"

	"github.com/MonkyMars/gecho"
)

// SearchProducts handles GET /products/search?q=&exact=&mode=
func (prm *ProductRoutesManager) SearchProducts(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	q, mode, err := handling.ParseSearchOptions(r)
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("Invalid query parameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	prm.search(w, r, session, q, mode)
}

// ScanProduct handles POST /products/scan with a code read by the barcode scanner
func (prm *ProductRoutesManager) ScanProduct(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.ScanRequest](r)
	if err != nil {
		handling.HandleServiceError(err, "invalid scan body", prm.logger, w)
		return
	}

	code, err := catalog.NormalizeScannedCode(body.Code)
	if err != nil {
		prm.logger.Debug("Ignored invalid scan", gecho.Field("raw", body.Code))
		handling.HandleServiceError(err, "invalid scan", prm.logger, w)
		return
	}

	prm.search(w, r, session, catalog.Query{Text: code, Exact: true}, services.ModeScan)
}

func (prm *ProductRoutesManager) search(w http.ResponseWriter, r *http.Request, session *services.Session, q catalog.Query, mode services.SearchMode) {
	result, err := session.Search(r.Context(), q, mode)
	if err != nil {
		prm.logger.Error("Search failed",
			gecho.Field("session_id", session.ID),
			gecho.Field("query", q.Text),
			gecho.Field("error", err),
		)
		gecho.ServiceUnavailable(w,
			gecho.WithMessage("Search is unavailable, please try again"),
			gecho.Send(),
		)
		return
	}

	prm.logger.Debug("Search answered",
		gecho.Field("query", q.Text),
		gecho.Field("mode", mode),
		gecho.Field("source", result.Source),
		gecho.Field("count", len(result.Products)),
	)

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}
