package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

// orderCreator is the slice of the Razorpay SDK this provider uses.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayProvider creates an order server-side and hands checkout.js the
// options to open the hosted popup.
type RazorpayProvider struct {
	keyID     string
	keySecret string
	orders    orderCreator
	brand     string
	log       *slog.Logger
}

// NewRazorpayProvider returns nil when the key pair is not set.
func NewRazorpayProvider(cfg *config.Config, log *slog.Logger) *RazorpayProvider {
	if !cfg.Payments.RazorpayConfigured() {
		return nil
	}
	client := razorpay.NewClient(cfg.Payments.RazorpayKeyID, cfg.Payments.RazorpayKeySecret)
	return newRazorpayProvider(cfg, client.Order, log)
}

func newRazorpayProvider(cfg *config.Config, orders orderCreator, log *slog.Logger) *RazorpayProvider {
	return &RazorpayProvider{
		keyID:     cfg.Payments.RazorpayKeyID,
		keySecret: cfg.Payments.RazorpayKeySecret,
		orders:    orders,
		brand:     cfg.Site.BrandName,
		log:       log.With(logger.Scope("payments.razorpay")),
	}
}

func (p *RazorpayProvider) Name() string { return "razorpay" }

// CreateCheckout creates an order. Monthly plans are charged for the first
// month; the order notes record the billing.
func (p *RazorpayProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	order, err := p.orders.Create(map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": currency,
		"receipt":  req.PaymentID,
		"notes": map[string]interface{}{
			"payment_id": req.PaymentID,
			"view_id":    req.ViewID,
			"plan":       req.Plan.ID,
			"billing":    string(req.Billing),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: create order: %w", err)
	}

	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("razorpay: create order: response has no id")
	}

	p.log.Debug("order created", slog.String("order_id", orderID), slog.String("payment_id", req.PaymentID))

	return &Checkout{
		Provider:    p.Name(),
		PaymentID:   req.PaymentID,
		ProviderRef: orderID,
		Options: map[string]any{
			"key":         p.keyID,
			"amount":      req.AmountMinor,
			"currency":    currency,
			"name":        p.brand,
			"description": req.Description,
			"order_id":    orderID,
			"theme":       map[string]any{"color": "#00e5ff"},
		},
	}, nil
}

// Signature computes the checkout signature for an order and payment:
// hex(HMAC-SHA256(secret, order_id + "|" + payment_id)).
func (p *RazorpayProvider) Signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(p.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature checkout.js passes to its success handler.
func (p *RazorpayProvider) Verify(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(p.Signature(orderID, paymentID)), []byte(strings.ToLower(signature)))
}
