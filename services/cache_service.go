package services

import (
	"context"
	"encoding/json"
	"errors"
	"ferreteria_server/catalog"
	"ferreteria_server/structs"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	blacklistPrefix = "blacklist:"
	rateLimitPrefix = "ratelimit:"
	supplierListKey = "suppliers:list"
)

// CacheService provides Redis caching functionality with connection pooling and retry logic
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

// NewRedisClient builds a pooled client from the cache configuration
func NewRedisClient(cfg *structs.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,

		// Connection pool settings
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,

		// Timeouts
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		// Retry settings
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	})
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config, client *redis.Client) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: client,
	}
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	return cs.client.Close()
}

// withRetry executes a Redis operation with jittered exponential backoff
func (cs *CacheService) withRetry(ctx context.Context, operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == maxRetries {
			break
		}

		// Only retry on network/connection errors, not on logical errors like key not found
		if !isRetryableCacheError(err) {
			return err
		}

		backoff := min(100*(1<<attempt), 2000) // ms
		backoff = backoff/2 + rand.IntN(backoff/2+1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(backoff) * time.Millisecond):
		}
	}

	return fmt.Errorf("redis operation failed after %d retries: %w", maxRetries, lastErr)
}

// isRetryableCacheError determines if an error is worth retrying
func isRetryableCacheError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := err.Error()
	for _, retryableErr := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	} {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}

	return false
}

// Set sets a key with TTL and automatic retry logic
func (cs *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Set(ctx, key, value, ttl).Err()
	}, 3)
}

// Get retrieves a key. A missing key yields the empty string and no error.
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	var result string

	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			result = ""
			return nil
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, 3)

	if err != nil {
		return "", err
	}
	return result, nil
}

// Delete removes a key with automatic retry logic
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Del(ctx, key).Err()
	}, 3)
}

// Exists checks if a key exists with automatic retry logic
func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	var result bool

	err := cs.withRetry(ctx, func() error {
		count, err := cs.client.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		result = count > 0
		return nil
	}, 3)

	return result, err
}

// BlacklistToken adds a token's jti to the blacklist until the token expires
func (cs *CacheService) BlacklistToken(ctx context.Context, jti uuid.UUID, exp time.Time) error {
	ttl := cs.config.Auth.BlacklistCacheTTL
	if exp.After(time.Now()) {
		ttl = time.Until(exp)
	}

	return cs.Set(ctx, blacklistPrefix+jti.String(), "true", ttl)
}

// IsTokenBlacklisted checks if a jti was revoked
func (cs *CacheService) IsTokenBlacklisted(ctx context.Context, jti uuid.UUID) (bool, error) {
	val, err := cs.Get(ctx, blacklistPrefix+jti.String())
	if err != nil {
		return false, err
	}

	return val == "true", nil
}

// IncrementRateLimit atomically increments a rate limit counter
func (cs *CacheService) IncrementRateLimit(ctx context.Context, ip, endpoint string, ttl time.Duration) (int, error) {
	key := fmt.Sprintf("%s%s:%s", rateLimitPrefix, ip, endpoint)

	var result int64
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Incr(ctx, key).Result()
		if err != nil {
			return err
		}
		result = val

		// Set expiration only on first increment
		if val == 1 {
			return cs.client.Expire(ctx, key, ttl).Err()
		}

		return nil
	}, 3)

	return int(result), err
}

// GetSupplierList returns the cached supplier list. A miss yields nil, false.
func (cs *CacheService) GetSupplierList(ctx context.Context) ([]catalog.Supplier, bool, error) {
	suppliers, err := getJSON[[]catalog.Supplier](ctx, cs, supplierListKey)
	if err != nil {
		return nil, false, err
	}
	if suppliers == nil {
		return nil, false, nil
	}
	return *suppliers, true, nil
}

// SetSupplierList caches the supplier list for the configured TTL
func (cs *CacheService) SetSupplierList(ctx context.Context, suppliers []catalog.Supplier) error {
	ttl := cs.config.Cache.SupplierListTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return setJSON(ctx, cs, supplierListKey, suppliers, ttl)
}

// DeletePattern removes all keys matching a pattern using SCAN
func (cs *CacheService) DeletePattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	err := cs.withRetry(ctx, func() error {
		var cursor uint64
		deleted = 0

		for {
			keys, nextCursor, err := cs.client.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if len(keys) > 0 {
				if err := cs.client.Del(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("delete failed: %w", err)
				}
				deleted += len(keys)
			}

			cursor = nextCursor
			if cursor == 0 {
				return nil
			}
		}
	}, 3)

	return deleted, err
}

// ClearAll deletes every key except the token blacklist, so a flush never
// revives a token revoked at logout.
func (cs *CacheService) ClearAll(ctx context.Context) (int, error) {
	cs.logger.Warn("Clearing redis database", gecho.Field("db", cs.config.Cache.DB))
	deleted := 0
	err := cs.withRetry(ctx, func() error {
		var cursor uint64
		deleted = 0

		for {
			keys, nextCursor, err := cs.client.Scan(ctx, cursor, "*", 100).Result()
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			doomed := keys[:0]
			for _, key := range keys {
				if !strings.HasPrefix(key, blacklistPrefix) {
					doomed = append(doomed, key)
				}
			}
			if len(doomed) > 0 {
				if err := cs.client.Del(ctx, doomed...).Err(); err != nil {
					return fmt.Errorf("delete failed: %w", err)
				}
				deleted += len(doomed)
			}

			cursor = nextCursor
			if cursor == 0 {
				return nil
			}
		}
	}, 3)

	return deleted, err
}

// Ping tests the Redis connection
func (cs *CacheService) Ping(ctx context.Context) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Ping(ctx).Err()
	}, 3)
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	stats := cs.client.PoolStats()

	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

func setJSON[T any](ctx context.Context, cs *CacheService, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cs.Set(ctx, key, data, ttl)
}

func getJSON[T any](ctx context.Context, cs *CacheService, key string) (*T, error) {
	val, err := cs.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if val == "" {
		return nil, nil // not found in cache
	}

	var result T
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}

	return &result, nil
}
