package leads

import (
	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/pkg/ratelimit"
)

// RegisterRoutes registers lead routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler, limiter *Limiter) {
	e.GET("/api/leads/business-types", h.BusinessTypes)
	e.POST("/api/views/:id/leads", h.Submit, ratelimit.Middleware("leads", limiter.Keyed))
}
