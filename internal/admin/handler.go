// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/nutriai/backend/internal/core"
	"github.com/nutriai/backend/internal/report"
)

type Reporter interface {
	Dashboard(ctx context.Context, days int) (*report.Dashboard, error)
}

type Handler struct {
	auth       *Authenticator
	reporter   Reporter
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	dbPing     func(ctx context.Context) error
	redisPing  func(ctx context.Context) error
	startedAt  time.Time
}

type HandlerConfig struct {
	Auth       *Authenticator
	Reporter   Reporter
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		auth:       cfg.Auth,
		reporter:   cfg.Reporter,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		dbPing:     cfg.DBPing,
		redisPing:  cfg.RedisPing,
		startedAt:  time.Now(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Get("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.RequireAdmin)
			r.Get("/stats", h.GetDashboard)
			r.Get("/stats/system", h.GetSystemStats)
		})
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	http.SetCookie(w, h.auth.sessionCookie(token))
	core.OK(w, LoginResponse{Message: "login successful"})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.auth.cookieName); err == nil {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			h.auth.logger.Warn("admin logout", "error", err)
		}
	}

	http.SetCookie(w, h.auth.clearedCookie())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			core.BadRequest(w, "days must be an integer")
			return
		}
		days = n
	}

	dashboard, err := h.reporter.Dashboard(r.Context(), days)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, dashboard)
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: pingOK(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: pingOK(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
			NumGC:        memStats.NumGC,
			Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
		},
	})
}

func pingOK(ctx context.Context, ping func(context.Context) error) bool {
	if ping == nil {
		return false
	}
	return ping(ctx) == nil
}

func (h *Handler) getDBStats() *DBPoolStats {
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
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
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
	}
}
