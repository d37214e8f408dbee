// Package catalog holds the in-memory product catalog of a clerk session:
// the ordered snapshot, query classification and matching, the cache builder,
// and the pure reconciliation applied after an edit is persisted.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// MaxResults caps every search result set, cached or remote.
const MaxResults = 50

// Product is the catalog view of an inventory row. SupplierName is a read-time
// join convenience and is never written back.
type Product struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Stock        float64    `json:"stock"`
	Zone         *int       `json:"zone"`
	SupplierID   *uuid.UUID `json:"supplier_id"`
	SupplierName string     `json:"supplier_name"`
	Photos       []string   `json:"photos"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Displayable reports whether the product carries the identifier and code
// required to be listed.
func (p Product) Displayable() bool {
	return p.ID != uuid.Nil && p.Code != ""
}

// Supplier is a read-only supplier row.
type Supplier struct {
	ID      uuid.UUID `json:"id"`
	Company string    `json:"company"`
}

// ProductUpdate is the set of fields written back by an edit.
type ProductUpdate struct {
	Name       string
	Stock      float64
	Zone       *int
	SupplierID *uuid.UUID
	Photos     []string
	UpdatedAt  time.Time
}

// SupplierName resolves a supplier id against the list. Unknown or nil ids
// resolve to the empty string.
func SupplierName(suppliers []Supplier, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	for _, s := range suppliers {
		if s.ID == *id {
			return s.Company
		}
	}
	return ""
}
