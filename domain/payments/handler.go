package payments

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
)

const maxWebhookBody = 64 << 10

// Handler handles payment HTTP requests
type Handler struct {
	svc   *Service
	views *views.Registry
	log   *slog.Logger
}

// NewHandler creates a new payments handler
func NewHandler(svc *Service, registry *views.Registry, log *slog.Logger) *Handler {
	return &Handler{
		svc:   svc,
		views: registry,
		log:   log.With(logger.Scope("payments.handler")),
	}
}

// PlansResponse is the body of GET /api/plans.
type PlansResponse struct {
	*Catalog
	Provider   string `json:"provider,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
	Configured bool   `json:"configured"`
}

// PaymentResponse reports the state of one payment.
type PaymentResponse struct {
	PaymentID string `json:"paymentId"`
	Status    Status `json:"status"`
}

// ListPlans handles GET /api/plans
func (h *Handler) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, PlansResponse{
		Catalog:    h.svc.Catalog(),
		Provider:   h.svc.ProviderName(),
		PublicKey:  h.svc.PublicKey(),
		Configured: h.svc.Configured(),
	})
}

// BeginCheckout handles POST /api/views/:id/checkout
// The plan comes from the open payment dialog.
func (h *Handler) BeginCheckout(c echo.Context) error {
	v, err := h.views.Get(c.Param("id"))
	if err != nil {
		return err
	}
	checkout, err := h.svc.Begin(c.Request().Context(), v)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkout)
}

// StripeReturn handles GET /payments/stripe/return
// Stripe redirects here after checkout. The session is verified with the
// API before anything is recorded; the browser always lands back on its
// page view.
func (h *Handler) StripeReturn(c echo.Context) error {
	viewID := c.QueryParam("view")
	ctx := c.Request().Context()

	var err error
	if c.QueryParam("cancelled") != "" {
		_, err = h.svc.Cancel(ctx, viewID, c.QueryParam("payment"))
	} else {
		_, err = h.svc.CompleteStripeSession(ctx, c.QueryParam("session_id"))
	}
	if err != nil {
		h.log.Warn("stripe return not applied", slog.String("view_id", viewID), logger.Error(err))
	}

	target := "/"
	if viewID != "" {
		target = "/?view=" + url.QueryEscape(viewID)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// StripeWebhook handles POST /api/payments/stripe/webhook
func (h *Handler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return apperror.NewBadRequest("unreadable body")
	}

	p, err := h.svc.HandleStripeWebhook(c.Request().Context(), payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		// unknown payments are acknowledged so Stripe stops retrying
		if errors.Is(err, apperror.ErrNotFound) {
			h.log.Warn("webhook for unknown payment", logger.Error(err))
			return c.JSON(http.StatusOK, map[string]bool{"received": true})
		}
		return err
	}
	if p != nil {
		h.log.Debug("webhook applied", slog.String("payment_id", p.ID), slog.String("status", string(p.Status)))
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

// RazorpayCallback handles POST /api/views/:id/payments/razorpay
func (h *Handler) RazorpayCallback(c echo.Context) error {
	viewID := c.Param("id")

	var req RazorpayResult
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	if req.OrderID == "" {
		return apperror.NewValidation(map[string]string{"razorpay_order_id": "required"})
	}

	p, err := h.svc.CompleteRazorpay(c.Request().Context(), viewID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PaymentResponse{PaymentID: p.ID, Status: p.Status})
}
