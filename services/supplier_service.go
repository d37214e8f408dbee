package services

import (
	"context"
	"ferreteria_server/catalog"
	"ferreteria_server/database"
	"ferreteria_server/lib"
	"ferreteria_server/structs/tables"
	"fmt"
	"time"

	"github.com/MonkyMars/gecho"
)

// SupplierSource lists suppliers ordered by company name
type SupplierSource interface {
	ListSuppliers(ctx context.Context) ([]catalog.Supplier, error)
}

// SupplierService reads proveedores through the shared redis cache
type SupplierService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
	timeout      time.Duration
}

func NewSupplierService(logger *gecho.Logger, db *database.DB, cacheService *CacheService, timeout time.Duration) *SupplierService {
	return &SupplierService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
		timeout:      timeout,
	}
}

func (ss *SupplierService) ListSuppliers(ctx context.Context) ([]catalog.Supplier, error) {
	cached, ok, err := ss.cacheService.GetSupplierList(ctx)
	if err != nil {
		ss.logger.Warn("Failed to get suppliers from cache", gecho.Field("error", err))
	} else if ok {
		return cached, nil
	}

	rows, err := database.Query[tables.Supplier](ss.db).
		OrderBy("pr.empresa", database.ASC).
		Timeout(ss.timeout).
		All(ctx)
	if err != nil {
		ss.logger.Error("Failed to fetch suppliers", gecho.Field("error", err))
		return nil, fmt.Errorf("failed to fetch suppliers: %w", lib.MapDBError(err))
	}

	suppliers := make([]catalog.Supplier, 0, len(rows))
	for i := range rows {
		suppliers = append(suppliers, rows[i].ToCatalog())
	}

	if err := ss.cacheService.SetSupplierList(ctx, suppliers); err != nil {
		ss.logger.Warn("Failed to cache suppliers", gecho.Field("error", err))
	}

	return suppliers, nil
}
