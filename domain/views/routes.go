package views

import "github.com/labstack/echo/v4"

// RegisterRoutes registers page-view routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/views", h.CreateView)

	g := e.Group("/api/views/:id")
	g.GET("/state", h.GetState)
	g.GET("/events", h.Events)
	g.POST("/modal", h.OpenModal)
	g.DELETE("/modal", h.CloseModal)
	g.POST("/keys", h.PressKey)
	g.DELETE("/toasts/:toastId", h.DismissToast)
}
