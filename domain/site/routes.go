package site

import "github.com/labstack/echo/v4"

// RegisterRoutes registers page routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/", h.Index)
	e.GET("/views/:id/modal", h.Modal)
}
