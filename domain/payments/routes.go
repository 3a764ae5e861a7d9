package payments

import (
	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/pkg/ratelimit"
)

// RegisterRoutes registers payment routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler, limiter *Limiter) {
	e.GET("/api/plans", h.ListPlans)
	e.POST("/api/views/:id/checkout", h.BeginCheckout, ratelimit.Middleware("checkout", limiter.Keyed))
	e.POST("/api/views/:id/payments/razorpay", h.RazorpayCallback)

	e.GET("/payments/stripe/return", h.StripeReturn)
	e.POST("/api/payments/stripe/webhook", h.StripeWebhook)
}
