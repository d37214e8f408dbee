package catalog

import (
	"slices"

	"github.com/google/uuid"
)

// Reconcile returns a snapshot in which the product id carries the values of
// a persisted update. The supplier name is resolved again from suppliers and
// never copied from the previous entry. A nil snapshot or an unknown id yields
// the input unchanged. The input snapshot is never modified.
func Reconcile(s *Snapshot, id uuid.UUID, upd ProductUpdate, suppliers []Supplier) *Snapshot {
	if s == nil {
		return nil
	}
	current, ok := s.Get(id)
	if !ok {
		return s
	}

	next := current
	next.Name = upd.Name
	next.Stock = upd.Stock
	next.Zone = cloneInt(upd.Zone)
	next.SupplierID = cloneUUID(upd.SupplierID)
	next.SupplierName = SupplierName(suppliers, upd.SupplierID)
	next.Photos = slices.Clone(upd.Photos)
	if !upd.UpdatedAt.IsZero() {
		next.UpdatedAt = upd.UpdatedAt
	}

	return s.with(next)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneUUID(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
