package services

import "errors"

// Edit workflow errors. Their messages are shown to the clerk as-is.
var (
	ErrFetchFailed    = errors.New("could not retrieve current product data")
	ErrPhotosRequired = errors.New("two photos are mandatory")
	ErrUploadFailed   = errors.New("could not upload image")
	ErrSaveFailed     = errors.New("could not save changes")
	ErrEditBusy       = errors.New("changes are being saved")
	ErrNotEditing     = errors.New("no product is being edited")
	ErrInvalidSlot    = errors.New("photo slot must be 1 or 2")
)

// Camera errors
var (
	ErrCameraBusy        = errors.New("camera is already in use")
	ErrCameraUnavailable = errors.New("camera unavailable")
)

// Session and search errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSuperseded      = errors.New("search superseded by a newer query")
)

// Storage errors
var (
	ErrObjectExists = errors.New("object already exists")
)
