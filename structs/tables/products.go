package tables

import (
	"ferreteria_server/catalog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Product maps the inventario table. Column names follow the existing schema.
type Product struct {
	bun.BaseModel `bun:"table:inventario,alias:p"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Code       string     `bun:"codigo" json:"code"`
	Name       string     `bun:"producto" json:"name"`
	Stock      float64    `bun:"stock" json:"stock"`
	Zone       *int       `bun:"zona" json:"zone"`
	SupplierID *uuid.UUID `bun:"proveedor_id,type:uuid" json:"supplier_id"`
	PhotoField string     `bun:"url_foto" json:"-"` // JSON array or legacy bare URL
	UpdatedAt  time.Time  `bun:"updated_at" json:"updated_at"`
	Supplier   *Supplier  `bun:"rel:belongs-to,join:proveedor_id=id" json:"supplier,omitempty"`
}

// Supplier maps the proveedores table.
type Supplier struct {
	bun.BaseModel `bun:"table:proveedores,alias:pr"`

	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Company string    `bun:"empresa" json:"company"`
}

// ToCatalog converts the row, resolving the joined supplier name and the
// stored photo field.
func (p *Product) ToCatalog() catalog.Product {
	out := catalog.Product{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		Stock:      p.Stock,
		Zone:       p.Zone,
		SupplierID: p.SupplierID,
		Photos:     catalog.ParsePhotoField(p.PhotoField).URLs,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Supplier != nil {
		out.SupplierName = p.Supplier.Company
	}
	return out
}

func (s *Supplier) ToCatalog() catalog.Supplier {
	return catalog.Supplier{ID: s.ID, Company: s.Company}
}
