package services

import (
	"ferreteria_server/structs"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testLogger() *gecho.Logger {
	return gecho.NewDefaultLogger()
}

func testConfig() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{Environment: "test"},
		Cache:  &structs.CacheConfig{SupplierListTTL: time.Minute},
		Auth: &structs.AuthConfig{
			AccessTokenSecret: "test-secret",
			AccessTokenExpiry: time.Hour,
			BlacklistCacheTTL: time.Hour,
		},
		Storage: &structs.StorageConfig{
			Bucket:       "ferreteria",
			CacheControl: 3600,
			Timeout:      5 * time.Second,
		},
		Catalog: &structs.CatalogConfig{
			Collation:      "es",
			SearchDebounce: 20 * time.Millisecond,
			BuildTimeout:   5 * time.Second,
			QueryTimeout:   5 * time.Second,
		},
		Session: &structs.SessionConfig{
			IdleTimeout:   time.Hour,
			SweepSchedule: "@every 1m",
			SaveTimeout:   5 * time.Second,
		},
		Capture: &structs.CaptureConfig{
			SnapshotSize:  800,
			JPEGQuality:   80,
			DefaultFacing: "environment",
			DefaultWidth:  1280,
			DefaultHeight: 720,

			MaxFramePixels: 1_000_000,
		},
	}
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(testLogger(), testConfig(), client), mr
}
