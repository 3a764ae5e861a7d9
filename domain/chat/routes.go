package chat

import (
	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/pkg/ratelimit"
)

// RegisterRoutes registers chat routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler, limiter *Limiter) {
	e.GET("/api/views/:id/chat", h.Transcript)
	e.POST("/api/views/:id/chat/stream", h.Stream, ratelimit.Middleware("chat", limiter.Keyed))
}
