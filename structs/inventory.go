package structs

import (
	"github.com/google/uuid"
)

type ScanRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// EditSubmitRequest carries the edited fields. Code is not editable; photos
// travel separately through the photo slot endpoints.
type EditSubmitRequest struct {
	Name       string     `json:"name" validate:"required,max=255"`
	Stock      *float64   `json:"stock" validate:"required"`
	Zone       *int       `json:"zone" validate:"omitempty,gte=0"`
	SupplierID *uuid.UUID `json:"supplier_id"`
}
