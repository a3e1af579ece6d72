// AngelaMos | 2026
// handler.go

package ops

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/zhqingit/voice-food-order/internal/auth"
	"github.com/zhqingit/voice-food-order/internal/core"
)

// SessionJanitor is the slice of the refresh ledger the cleanup endpoint
// needs.
type SessionJanitor interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Handler exposes pool/runtime stats and maintenance triggers. There is
// no operator principal in the system, so the whole group is gated on a
// static bearer token from config instead of the portal gateways.
type Handler struct {
	token      string
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	janitor    SessionJanitor
}

type HandlerConfig struct {
	Token      string
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	Janitor    SessionJanitor
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		token:      cfg.Token,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		janitor:    cfg.Janitor,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ops", func(r chi.Router) {
		r.Use(h.requireToken)

		r.Get("/stats", h.Stats)
		r.Post("/maintenance/session-cleanup", h.SessionCleanup)
	})
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token == "" {
			core.NotFound(w, "route")
			return
		}

		presented := auth.ExtractBearerToken(r)
		if subtle.ConstantTimeCompare(
			[]byte(presented),
			[]byte(h.token),
		) != 1 {
			core.Forbidden(w, "ops token required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	core.OK(w, StatsResponse{
		Database: h.poolStats(),
		Redis:    h.cacheStats(),
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
			MemAlloc:     memStats.Alloc,
			MemSys:       memStats.Sys,
			NumGC:        memStats.NumGC,
		},
	})
}

func (h *Handler) SessionCleanup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	deleted, err := h.janitor.DeleteExpired(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CleanupResponse{DeletedSessions: deleted})
}

func (h *Handler) poolStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) cacheStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type StatsResponse struct {
	Database *DBPoolStats    `json:"database,omitempty"`
	Redis    *RedisPoolStats `json:"redis,omitempty"`
	Runtime  RuntimeStats    `json:"runtime"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

type CleanupResponse struct {
	DeletedSessions int64 `json:"deleted_sessions"`
}
