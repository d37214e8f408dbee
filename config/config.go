package config

import (
	"ferreteria_server/structs"
	"sync"
	"time"
)

var (
	configInstance *structs.Config
	configOnce     sync.Once
)

func GetConfig() *structs.Config {
	configOnce.Do(func() {
		configInstance = load()
	})
	return configInstance
}

func load() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{
			AppName:         getEnvAsString("APP_NAME", "Ferreteria_no_env"),
			Environment:     getEnvAsString("APP_ENV", "development"),
			Port:            getEnvAsString("APP_PORT", ":8082"),
			LogLevel:        getEnvAsString("LOG_LEVEL", ""),
			CookieDomain:    getEnvAsString("COOKIE_DOMAIN", ""),
			ReadTimeout:     getEnvAsTimeDuration("SERVER_READ_TIME_OUT", 15*time.Second),
			WriteTimeout:    getEnvAsTimeDuration("SERVER_WRITE_TIME_OUT", 0),
			IdleTimeout:     getEnvAsTimeDuration("SERVER_IDLE_TIME_OUT", 60*time.Second),
			ShutdownTimeout: getEnvAsTimeDuration("SERVER_SHUTDOWN_TIME_OUT", 10*time.Second),
			MaxHeaderBytes:  getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			MaxBodyBytes:    int64(getEnvAsInt("SERVER_MAX_BODY_BYTES", 10<<20)),
		},
		Cors: &structs.CorsConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getEnvAsSlice("CORS_ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvAsSlice("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token"}),
			ExposedHeaders:   getEnvAsSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "X-RateLimit-Remaining"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 300),
		},
		Database: &structs.DatabaseConfig{
			Driver:       getEnvAsString("DB_DRIVER", "pgx"),
			Host:         getEnvAsString("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnvAsString("DB_USER", "postgres"),
			Password:     getEnvAsString("DB_PASSWORD", "password"),
			Name:         getEnvAsString("DB_NAME", "postgres"),
			SSLMode:      getEnvAsString("DB_SSL_MODE", "disable"),
			MaxConns:     getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:     getEnvAsInt("DB_MIN_CONNS", 2),
			MaxLifetime:  getEnvAsTimeDuration("DB_MAX_LIFETIME", 30*time.Minute),
			MaxIdleTime:  getEnvAsTimeDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
			ReadTimeout:  getEnvAsTimeDuration("DB_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsTimeDuration("DB_WRITE_TIMEOUT", 5*time.Second),
			SlowQuery:    getEnvAsTimeDuration("DB_SLOW_QUERY", time.Second),
		},
		Cache: &structs.CacheConfig{
			Address:         getEnvAsString("REDIS_ADDRESS", "localhost:6379"),
			Username:        getEnvAsString("REDIS_USERNAME", ""),
			Password:        getEnvAsString("REDIS_PASSWORD", ""),
			DB:              getEnvAsInt("REDIS_DB", 0),
			PoolSize:        getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:    getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			MaxIdleConns:    getEnvAsInt("REDIS_MAX_IDLE_CONNS", 5),
			PoolTimeout:     getEnvAsTimeDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:     getEnvAsTimeDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			DialTimeout:     getEnvAsTimeDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     getEnvAsTimeDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    getEnvAsTimeDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			MaxRetries:      getEnvAsInt("REDIS_MAX_RETRIES", 3),
			MinRetryBackoff: getEnvAsTimeDuration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: getEnvAsTimeDuration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			SupplierListTTL: getEnvAsTimeDuration("REDIS_SUPPLIER_LIST_TTL", 10*time.Minute),
		},
		Auth: &structs.AuthConfig{
			AccessTokenSecret: getEnvAsString("AUTH_ACCESS_TOKEN_SECRET", "default_access_secret"),
			AccessTokenExpiry: getEnvAsTimeDuration("AUTH_ACCESS_TOKEN_EXPIRY", 12*time.Hour),
			BlacklistCacheTTL: getEnvAsTimeDuration("AUTH_BLACKLIST_CACHE_TTL", 12*time.Hour),
		},
		RateLimit: &structs.RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			AuthLimit:      getEnvAsInt("RATE_LIMIT_AUTH", 10),
			AuthWindow:     getEnvAsTimeDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
			SearchLimit:    getEnvAsInt("RATE_LIMIT_SEARCH", 300),
			SearchWindow:   getEnvAsTimeDuration("RATE_LIMIT_SEARCH_WINDOW", time.Minute),
			GeneralLimit:   getEnvAsInt("RATE_LIMIT_GENERAL", 120),
			GeneralWindow:  getEnvAsTimeDuration("RATE_LIMIT_GENERAL_WINDOW", time.Minute),
			WhitelistedIPs: getEnvAsSlice("RATE_LIMIT_WHITELIST", nil),
		},
		Storage: &structs.StorageConfig{
			URL:          getEnvAsString("STORAGE_URL", "http://localhost:54321"),
			ServiceKey:   getEnvAsString("STORAGE_SERVICE_KEY", ""),
			Bucket:       getEnvAsString("STORAGE_BUCKET", "ferreteria"),
			CacheControl: getEnvAsInt("STORAGE_CACHE_CONTROL", 3600),
			Timeout:      getEnvAsTimeDuration("STORAGE_TIMEOUT", 30*time.Second),
		},
		Catalog: &structs.CatalogConfig{
			Collation:      getEnvAsString("CATALOG_COLLATION", "es"),
			SearchDebounce: getEnvAsTimeDuration("SEARCH_DEBOUNCE", 400*time.Millisecond),
			BuildTimeout:   getEnvAsTimeDuration("CATALOG_BUILD_TIMEOUT", 2*time.Minute),
			QueryTimeout:   getEnvAsTimeDuration("CATALOG_QUERY_TIMEOUT", 10*time.Second),
		},
		Session: &structs.SessionConfig{
			IdleTimeout:   getEnvAsTimeDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
			SweepSchedule: getEnvAsString("SESSION_SWEEP_SCHEDULE", "@every 1m"),
			SaveTimeout:   getEnvAsTimeDuration("EDIT_SAVE_TIMEOUT", time.Minute),
		},
		Capture: &structs.CaptureConfig{
			SnapshotSize:  getEnvAsInt("CAPTURE_SNAPSHOT_SIZE", 800),
			JPEGQuality:   getEnvAsInt("CAPTURE_JPEG_QUALITY", 80),
			DefaultFacing: getEnvAsString("CAPTURE_FACING", "environment"),
			DefaultWidth:  getEnvAsInt("CAPTURE_WIDTH", 1280),
			DefaultHeight: getEnvAsInt("CAPTURE_HEIGHT", 720),

			MaxFramePixels: getEnvAsInt("CAPTURE_MAX_FRAME_PIXELS", 24_000_000),
		},
	}
}

func GetLogLevel() string {
	if lvl := GetConfig().Server.LogLevel; lvl != "" {
		return lvl
	}
	if IsProduction() {
		return "info"
	}
	return "debug"
}

func IsProduction() bool {
	return GetConfig().Server.Environment == "production"
}
