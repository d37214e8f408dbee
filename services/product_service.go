package services

import (
	"context"
	"ferreteria_server/catalog"
	"ferreteria_server/database"
	"ferreteria_server/lib"
	"ferreteria_server/structs/tables"
	"fmt"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// catalogChunkSize is the page size used while downloading the full catalog
const catalogChunkSize = 1000

// ProductGateway is the remote product store
type ProductGateway interface {
	ListProducts(ctx context.Context, plan catalog.Plan, limit int) ([]catalog.Product, error)
	ListAllProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, upd catalog.ProductUpdate) error
}

// ProductService reads and writes the inventario table
type ProductService struct {
	logger  *gecho.Logger
	db      *database.DB
	timeout time.Duration
}

func NewProductService(logger *gecho.Logger, db *database.DB, timeout time.Duration) *ProductService {
	return &ProductService{
		logger:  logger,
		db:      db,
		timeout: timeout,
	}
}

// ListProducts runs a classified query remotely, ordered by name
func (ps *ProductService) ListProducts(ctx context.Context, plan catalog.Plan, limit int) ([]catalog.Product, error) {
	startTime := time.Now()

	query := ps.planQuery(plan).Limit(limit)

	rows, err := query.All(ctx)
	if err != nil {
		ps.logger.Error("Failed to search products",
			gecho.Field("error", err),
			gecho.Field("plan", plan.Kind.String()),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("failed to search products: %w", lib.MapDBError(err))
	}

	products := ps.toCatalog(rows)
	ps.logger.Debug("Products searched remotely",
		gecho.Field("plan", plan.Kind.String()),
		gecho.Field("count", len(products)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return products, nil
}

// planQuery translates a plan into the remote query. The conditions mirror
// catalog.Plan.Matches.
func (ps *ProductService) planQuery(plan catalog.Plan) *database.QueryBuilder[tables.Product] {
	query := database.Query[tables.Product](ps.db).
		Relation("Supplier").
		Timeout(ps.timeout)

	switch plan.Kind {
	case catalog.PlanExactCode:
		query = query.Where("p.codigo", plan.Term)
	case catalog.PlanCodePrefix:
		query = query.WhereOp("p.codigo", "ILIKE", escapeLike(plan.Term)+"%")
	case catalog.PlanWords:
		for _, word := range plan.Words {
			pattern := "%" + escapeLike(word) + "%"
			query = query.Or().
				WhereOp("p.producto", "ILIKE", pattern).
				WhereOp("p.codigo", "ILIKE", pattern).
				End()
		}
	}

	return query.
		OrderBy("p.producto", database.ASC).
		OrderBy("p.id", database.ASC)
}

// ListAllProducts downloads the whole catalog in chunks
func (ps *ProductService) ListAllProducts(ctx context.Context) ([]catalog.Product, error) {
	startTime := time.Now()

	query := database.Query[tables.Product](ps.db).
		Relation("Supplier").
		OrderBy("p.producto", database.ASC).
		OrderBy("p.id", database.ASC)

	var all []catalog.Product
	err := database.Chunk(ctx, query, catalogChunkSize, func(rows []tables.Product, _ int) error {
		for i := range rows {
			all = append(all, rows[i].ToCatalog())
		}
		return nil
	})
	if err != nil {
		ps.logger.Error("Failed to download catalog", gecho.Field("error", err), gecho.Field("loaded", len(all)))
		return nil, fmt.Errorf("failed to download catalog: %w", lib.MapDBError(err))
	}

	ps.logger.Debug("Catalog downloaded",
		gecho.Field("count", len(all)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return all, nil
}

// GetProduct fetches the authoritative row. A missing row yields lib.ErrNotFound.
func (ps *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	row, err := database.Query[tables.Product](ps.db).
		Relation("Supplier").
		Where("p.id", id).
		Timeout(ps.timeout).
		First(ctx)
	if err != nil {
		ps.logger.Error("Failed to fetch product", gecho.Field("error", err), gecho.Field("id", id))
		return nil, fmt.Errorf("failed to fetch product: %w", lib.MapDBError(err))
	}
	if row == nil {
		return nil, lib.ErrNotFound
	}

	product := row.ToCatalog()
	return &product, nil
}

// UpdateProduct writes the edited fields keyed by id
func (ps *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, upd catalog.ProductUpdate) error {
	affected, err := database.UpdateByID[tables.Product](ps.db, ctx, "p.id", id, map[string]any{
		"producto":     upd.Name,
		"stock":        upd.Stock,
		"zona":         upd.Zone,
		"proveedor_id": upd.SupplierID,
		"url_foto":     catalog.EncodePhotoField(upd.Photos),
		"updated_at":   upd.UpdatedAt,
	})
	if err != nil {
		ps.logger.Error("Failed to update product", gecho.Field("error", err), gecho.Field("id", id))
		return fmt.Errorf("failed to update product: %w", lib.MapDBError(err))
	}
	if affected == 0 {
		return lib.ErrNotFound
	}

	ps.logger.Info("Product updated", gecho.Field("id", id))
	return nil
}

// toCatalog converts rows, skipping those that cannot be displayed
func (ps *ProductService) toCatalog(rows []tables.Product) []catalog.Product {
	out := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		p := rows[i].ToCatalog()
		if !p.Displayable() {
			ps.logger.Warn("Skipping product without id or code", gecho.Field("id", p.ID), gecho.Field("code", p.Code))
			continue
		}
		out = append(out, p)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters literal
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
