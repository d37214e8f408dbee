package structs

import "time"

type Config struct {
	Server    *ServerConfig
	Cors      *CorsConfig
	Database  *DatabaseConfig
	Cache     *CacheConfig
	Auth      *AuthConfig
	RateLimit *RateLimitConfig
	Storage   *StorageConfig
	Catalog   *CatalogConfig
	Session   *SessionConfig
	Capture   *CaptureConfig
}

type ServerConfig struct {
	AppName         string        // Ferreteria
	Environment     string        // development, production
	Port            string        // :8082
	LogLevel        string        // empty means derived from Environment
	CookieDomain    string        // only applied in production
	ReadTimeout     time.Duration // in seconds
	WriteTimeout    time.Duration // zero keeps SSE streams open
	IdleTimeout     time.Duration // in seconds
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int   // in bytes
	MaxBodyBytes    int64 // photo frames included
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // in seconds
}

type DatabaseConfig struct {
	Driver       string // pgx or pgdriver
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SlowQuery    time.Duration
}

type CacheConfig struct {
	Address         string
	Username        string
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	MaxIdleConns    int
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	SupplierListTTL time.Duration
}

type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	BlacklistCacheTTL time.Duration
}

type RateLimitConfig struct {
	Enabled        bool
	AuthLimit      int
	AuthWindow     time.Duration
	SearchLimit    int
	SearchWindow   time.Duration
	GeneralLimit   int
	GeneralWindow  time.Duration
	WhitelistedIPs []string
}

type StorageConfig struct {
	URL          string // https://<project>.supabase.co
	ServiceKey   string
	Bucket       string // ferreteria
	CacheControl int    // in seconds
	Timeout      time.Duration
}

type CatalogConfig struct {
	Collation      string        // BCP 47 tag used to order product names
	SearchDebounce time.Duration // quiet period before a remote search
	BuildTimeout   time.Duration
	QueryTimeout   time.Duration
}

type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepSchedule string // cron spec
	SaveTimeout   time.Duration
}

type CaptureConfig struct {
	SnapshotSize  int // square edge in pixels
	JPEGQuality   int
	DefaultFacing string // environment or user
	DefaultWidth  int
	DefaultHeight int

	MaxFramePixels int // uploads above this are refused before decoding
}
