package services

import (
	"ferreteria_server/database"
	"ferreteria_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/redis/go-redis/v9"
)

type ServiceManager struct {
	AuthService     *AuthService
	CacheService    *CacheService
	HealthService   *HealthService
	ProductService  *ProductService
	SupplierService *SupplierService
	StorageService  *StorageService
	SessionService  *SessionService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB, redisClient *redis.Client) *ServiceManager {
	cacheService := NewCacheService(logger, cfg, redisClient)
	authService := NewAuthService(cfg, logger, NewUserService(db))
	productService := NewProductService(logger, db, cfg.Catalog.QueryTimeout)
	supplierService := NewSupplierService(logger, db, cacheService, cfg.Catalog.QueryTimeout)
	storageService := NewStorageService(logger, cfg.Storage)
	sessionService := NewSessionService(logger, cfg, productService, supplierService, storageService)
	healthService := NewHealthService(logger, db, cacheService, sessionService)

	return &ServiceManager{
		AuthService:     authService,
		CacheService:    cacheService,
		HealthService:   healthService,
		ProductService:  productService,
		SupplierService: supplierService,
		StorageService:  storageService,
		SessionService:  sessionService,
	}
}
