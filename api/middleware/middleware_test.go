package middleware

import (
	"context"
	"ferreteria_server/catalog"
	"ferreteria_server/lib"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type emptyGateway struct{}

func (emptyGateway) ListProducts(context.Context, catalog.Plan, int) ([]catalog.Product, error) {
	return nil, nil
}

func (emptyGateway) ListAllProducts(context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (emptyGateway) GetProduct(context.Context, uuid.UUID) (*catalog.Product, error) {
	return nil, lib.ErrNotFound
}

func (emptyGateway) UpdateProduct(context.Context, uuid.UUID, catalog.ProductUpdate) error {
	return lib.ErrNotFound
}

type emptySuppliers struct{}

func (emptySuppliers) ListSuppliers(context.Context) ([]catalog.Supplier, error) {
	return nil, nil
}

type nopStore struct{}

func (nopStore) Upload(_ context.Context, name string, _ []byte, _ string, _ bool) (string, error) {
	return name, nil
}

func (nopStore) PublicURL(name string) string { return name }

func testConfig() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{Environment: "test"},
		Cache:  &structs.CacheConfig{},
		Auth: &structs.AuthConfig{
			AccessTokenSecret: "test-secret",
			AccessTokenExpiry: time.Hour,
			BlacklistCacheTTL: time.Hour,
		},
		RateLimit: &structs.RateLimitConfig{
			Enabled:       true,
			AuthLimit:     2,
			AuthWindow:    time.Minute,
			SearchLimit:   100,
			SearchWindow:  time.Minute,
			GeneralLimit:  100,
			GeneralWindow: time.Minute,
		},
		Catalog: &structs.CatalogConfig{
			Collation:      "es",
			SearchDebounce: 10 * time.Millisecond,
			BuildTimeout:   time.Second,
			QueryTimeout:   time.Second,
		},
		Session: &structs.SessionConfig{
			IdleTimeout:   time.Hour,
			SweepSchedule: "@every 1m",
			SaveTimeout:   time.Second,
		},
		Capture: &structs.CaptureConfig{
			SnapshotSize:  100,
			JPEGQuality:   80,
			DefaultFacing: "environment",
			DefaultWidth:  640,
			DefaultHeight: 480,
		},
	}
}

func newTestMiddleware(t *testing.T) (*Middleware, *miniredis.Miniredis) {
	t.Helper()
	cfg := testConfig()
	logger := gecho.NewDefaultLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := services.NewSessionService(logger, cfg, emptyGateway{}, emptySuppliers{}, nopStore{})
	t.Cleanup(func() { sessions.Shutdown(context.Background()) })

	return &Middleware{
		cfg:            cfg,
		logger:         logger,
		authService:    services.NewAuthService(cfg, logger, nil),
		cacheService:   services.NewCacheService(logger, cfg, client),
		sessionService: sessions,
	}, mr
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func signedRequest(t *testing.T, method, path string, claims *structs.AuthClaims) *http.Request {
	t.Helper()
	token, err := lib.SignToken(claims, "test-secret")
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: lib.AccessCookieName, Value: token})
	return req
}

func testClaims(sid uuid.UUID) *structs.AuthClaims {
	now := time.Now()
	return &structs.AuthClaims{
		Sub:   uuid.New(),
		Email: "clerk@ferreteria.test",
		Role:  "clerk",
		Iat:   now,
		Exp:   now.Add(time.Hour),
		Jti:   uuid.New(),
		Sid:   sid,
	}
}
