package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/database"
	"github.com/getcalls/website/internal/version"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Handler handles health check requests
type Handler struct {
	db       *bun.DB
	registry *views.Registry
	cfg      *config.Config
	startAt  time.Time
}

// NewHandler creates a new health handler
func NewHandler(db *bun.DB, registry *views.Registry, cfg *config.Config) *Handler {
	return &Handler{
		db:       db,
		registry: registry,
		cfg:      cfg,
		startAt:  time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string              `json:"status"`
	Timestamp string              `json:"timestamp"`
	Uptime    string              `json:"uptime"`
	Version   version.VersionInfo `json:"version"`
	Checks    map[string]Check    `json:"checks"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) pingDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return database.Ping(ctx, h.db)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	db := Check{Status: statusHealthy}
	if err := h.pingDB(c.Request().Context()); err != nil {
		db = Check{Status: statusUnhealthy, Message: err.Error()}
	}

	resp := HealthResponse{
		Status:    db.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).Round(time.Second).String(),
		Version:   version.Info(),
		Checks:    map[string]Check{"database": db},
	}

	code := http.StatusOK
	if resp.Status == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

// Healthz handles GET /healthz (liveness)
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Ready handles GET /ready
func (h *Handler) Ready(c echo.Context) error {
	if err := h.pingDB(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":  "not_ready",
			"message": "Database connection failed",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ready"})
}

// Debug handles GET /debug. It is hidden in production.
func (h *Handler) Debug(c echo.Context) error {
	if h.cfg.Environment == "production" {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	out := map[string]any{
		"environment": h.cfg.Environment,
		"go_version":  runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"memory": map[string]any{
			"alloc_mb":       mem.Alloc / 1024 / 1024,
			"total_alloc_mb": mem.TotalAlloc / 1024 / 1024,
			"sys_mb":         mem.Sys / 1024 / 1024,
			"num_gc":         mem.NumGC,
		},
		"views_active": h.registry.Count(),
	}
	if h.db != nil {
		stats := h.db.Stats()
		out["database"] = map[string]any{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"wait_count":       stats.WaitCount,
		}
	}
	return c.JSON(http.StatusOK, out)
}
