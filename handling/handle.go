package handling

import (
	"errors"
	"ferreteria_server/catalog"
	"ferreteria_server/lib"
	"ferreteria_server/services"
	"net/http"

	"github.com/MonkyMars/gecho"
)

func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) error {
	logger.Error("An error occurred", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))

	return gecho.InternalServerError(w).Send()
}

// HandleServiceError writes the response for an error returned by a service.
// Unknown errors fall through to HandleError.
func HandleServiceError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) error {
	var validationErr *lib.ValidationError
	var scanErr *catalog.InvalidScanError

	switch {
	case errors.As(err, &validationErr):
		return gecho.BadRequest(w, gecho.WithMessage("Invalid request"), gecho.WithData(validationErr.Errors)).Send()
	case errors.As(err, &scanErr):
		return gecho.BadRequest(w, gecho.WithMessage(scanErr.Error())).Send()
	case errors.Is(err, services.ErrPhotosRequired),
		errors.Is(err, services.ErrInvalidSlot),
		errors.Is(err, services.ErrCameraUnavailable):
		return gecho.BadRequest(w, gecho.WithMessage(rootMessage(err))).Send()
	case errors.Is(err, lib.ErrInvalidCredentials),
		errors.Is(err, services.ErrSessionNotFound):
		return gecho.Unauthorized(w, gecho.WithMessage(rootMessage(err))).Send()
	case errors.Is(err, services.ErrEditBusy),
		errors.Is(err, services.ErrNotEditing),
		errors.Is(err, services.ErrCameraBusy):
		return gecho.Conflict(w, gecho.WithMessage(rootMessage(err))).Send()
	case errors.Is(err, services.ErrFetchFailed),
		errors.Is(err, services.ErrUploadFailed),
		errors.Is(err, services.ErrSaveFailed):
		logger.Warn(msg, gecho.Field("error", err))
		return gecho.ServiceUnavailable(w, gecho.WithMessage(rootMessage(err))).Send()
	case lib.IsNotFound(err):
		return gecho.NotFound(w, gecho.WithMessage("Product not found")).Send()
	default:
		return HandleError(err, msg, logger, w)
	}
}

// rootMessage returns the clerk-facing sentinel text of a wrapped error
func rootMessage(err error) string {
	for _, sentinel := range clerkErrors {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

var clerkErrors = []error{
	services.ErrFetchFailed,
	services.ErrPhotosRequired,
	services.ErrUploadFailed,
	services.ErrSaveFailed,
	services.ErrEditBusy,
	services.ErrNotEditing,
	services.ErrInvalidSlot,
	services.ErrCameraBusy,
	services.ErrCameraUnavailable,
	services.ErrSessionNotFound,
	lib.ErrInvalidCredentials,
}
