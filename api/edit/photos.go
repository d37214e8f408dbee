package edit

import (
	"ferreteria_server/api/middleware"
	"ferreteria_server/handling"
	"ferreteria_server/services"
	"io"
	"net/http"
	"strconv"

	"github.com/MonkyMars/gecho"
)

// CapturePhoto handles PUT /edit/photos/{slot}. The body is the frame grabbed
// by the browser camera; it is cropped, scaled and re-encoded before it takes
// the slot.
func (erm *EditRoutesManager) CapturePhoto(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	slot, err := handling.ParseSlot(r)
	if err != nil {
		handling.HandleServiceError(err, "invalid photo slot", erm.logger, w)
		return
	}

	// The frame is only decoded for a workflow that can take it
	if err := session.Edit.RequireEditing(); err != nil {
		handling.HandleServiceError(err, "failed to capture photo", erm.logger, w)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil || len(payload) == 0 {
		gecho.BadRequest(w, gecho.WithMessage("Image body is required"), gecho.Send())
		return
	}

	query := r.URL.Query()
	width, _ := strconv.Atoi(query.Get("width"))
	height, _ := strconv.Atoi(query.Get("height"))

	jpeg, err := session.Camera.Capture(r.Context(),
		session.Camera.UploadDevice(payload),
		query.Get("facing"),
		services.Resolution{Width: width, Height: height},
	)
	if err != nil {
		handling.HandleServiceError(err, "failed to capture photo", erm.logger, w)
		return
	}

	view, err := session.Edit.CapturePhoto(slot, jpeg, "image/jpeg")
	if err != nil {
		handling.HandleServiceError(err, "failed to place photo", erm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(view),
		gecho.Send(),
	)
}

func (erm *EditRoutesManager) ClearPhoto(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	slot, err := handling.ParseSlot(r)
	if err != nil {
		handling.HandleServiceError(err, "invalid photo slot", erm.logger, w)
		return
	}

	view, err := session.Edit.ClearPhoto(slot)
	if err != nil {
		handling.HandleServiceError(err, "failed to clear photo", erm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(view),
		gecho.Send(),
	)
}
