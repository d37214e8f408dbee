package services

import (
	"context"
	"ferreteria_server/database"
	"ferreteria_server/structs/tables"
	"runtime"
	"time"

	"github.com/MonkyMars/gecho"
)

var uptimeStart = time.Now()

type serverHealthStatus struct {
	Uptime         float64   `json:"uptime"`        // in seconds
	CurrentTime    time.Time `json:"current_time"`  // server current time
	ServiceAlive   bool      `json:"service_alive"` // always true if service is running
	ActiveSessions int       `json:"active_sessions"`
	RamStats       *RamStats `json:"ram_stats"`
}

type RamStats struct {
	TotalMB     uint64 `json:"total_mb"`
	UsedMB      uint64 `json:"used_mb"`
	FreeMB      uint64 `json:"free_mb"`
	UsedPercent uint64 `json:"used_percent"`
}

type databaseHealthStatus struct {
	Connected      bool      `json:"connected"`
	Products       int       `json:"products"`
	LastChecked    time.Time `json:"last_checked"`
	ResponseTimeMs int64     `json:"response_time_ms"`
}

type cacheHealthStatus struct {
	Connected      bool           `json:"connected"`
	LastChecked    time.Time      `json:"last_checked"`
	ResponseTimeMs int64          `json:"response_time_ms"`
	Pool           map[string]any `json:"pool,omitempty"`
}

type HealthService struct {
	logger   *gecho.Logger
	db       *database.DB
	cache    *CacheService
	sessions *SessionService
}

func NewHealthService(logger *gecho.Logger, db *database.DB, cache *CacheService, sessions *SessionService) *HealthService {
	return &HealthService{
		logger:   logger,
		db:       db,
		cache:    cache,
		sessions: sessions,
	}
}

func getRamStats() *RamStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	totalMB := m.Sys / 1024 / 1024
	usedMB := m.Alloc / 1024 / 1024
	usedPercent := uint64(0)
	if totalMB > 0 {
		usedPercent = (usedMB * 100) / totalMB
	}

	return &RamStats{
		TotalMB:     totalMB,
		UsedMB:      usedMB,
		FreeMB:      totalMB - usedMB,
		UsedPercent: usedPercent,
	}
}

func (hs *HealthService) GetServerHealthStatus() serverHealthStatus {
	status := serverHealthStatus{
		Uptime:       time.Since(uptimeStart).Seconds(),
		CurrentTime:  time.Now(),
		ServiceAlive: true,
		RamStats:     getRamStats(),
	}
	if hs.sessions != nil {
		status.ActiveSessions = hs.sessions.Count()
	}
	return status
}

// GetDatabaseHealthStatus pings the pool and counts inventory rows
func (hs *HealthService) GetDatabaseHealthStatus(ctx context.Context) (databaseHealthStatus, error) {
	start := time.Now()
	err := hs.db.Health(ctx)

	status := databaseHealthStatus{Connected: err == nil}
	if err == nil {
		status.Products, err = database.Query[tables.Product](hs.db).Timeout(5 * time.Second).Count(ctx)
	}
	status.LastChecked = time.Now()
	status.ResponseTimeMs = time.Since(start).Milliseconds()

	if err != nil {
		hs.logger.Error("Database health check failed", gecho.Field("error", err))
	}
	return status, err
}

func (hs *HealthService) GetCacheHealthStatus(ctx context.Context) (cacheHealthStatus, error) {
	start := time.Now()
	err := hs.cache.Ping(ctx)

	status := cacheHealthStatus{
		Connected:      err == nil,
		LastChecked:    time.Now(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Pool:           hs.cache.GetConnectionStats(),
	}
	if err != nil {
		hs.logger.Error("Cache health check failed", gecho.Field("error", err))
	}
	return status, err
}
