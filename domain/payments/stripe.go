package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

// ErrInvalidSignature is returned for callbacks whose signature does not
// verify.
var ErrInvalidSignature = errors.New("invalid signature")

// StripeProvider uses hosted Checkout Sessions. The session's
// client_reference_id carries the payment id.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	log           *slog.Logger
}

// NewStripeProvider returns nil when no secret key is set.
func NewStripeProvider(cfg *config.PaymentsConfig, log *slog.Logger) *StripeProvider {
	if !cfg.StripeConfigured() {
		return nil
	}
	log = log.With(logger.Scope("payments.stripe"))

	backendCfg := &stripe.BackendConfig{
		LeveledLogger:     stripeLogger{log},
		MaxNetworkRetries: stripe.Int64(1),
	}
	if cfg.StripeAPIBase != "" {
		backendCfg.URL = stripe.String(cfg.StripeAPIBase)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	api := &client.API{}
	api.Init(cfg.StripeSecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeProvider{
		api:           api,
		webhookSecret: cfg.StripeWebhookSecret,
		log:           log,
	}
}

func (p *StripeProvider) Name() string { return "stripe" }

// CreateCheckout opens a Checkout Session. Monthly plans use subscription
// mode with a monthly recurring price.
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(strings.ToLower(req.Currency)),
		UnitAmount: stripe.Int64(req.AmountMinor),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(req.Plan.Name + " Plan"),
			Description: stripe.String(req.Description),
		},
	}
	mode := stripe.CheckoutSessionModePayment
	if req.Billing == BillingMonthly {
		mode = stripe.CheckoutSessionModeSubscription
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(mode)),
		ClientReferenceID: stripe.String(req.PaymentID),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: priceData,
			Quantity:  stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"payment_id": req.PaymentID,
			"view_id":    req.ViewID,
			"plan":       req.Plan.ID,
			"billing":    string(req.Billing),
		},
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create session: %w", err)
	}

	return &Checkout{
		Provider:    p.Name(),
		PaymentID:   req.PaymentID,
		ProviderRef: sess.ID,
		RedirectURL: sess.URL,
	}, nil
}

// SessionOutcome fetches a session and maps it to an outcome. An open,
// unpaid session yields StatusPending.
func (p *StripeProvider) SessionOutcome(ctx context.Context, sessionID string) (*Outcome, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get session: %w", err)
	}
	return sessionOutcome(sess), nil
}

// ParseWebhook verifies the Stripe-Signature header and maps checkout
// events to outcomes. Events that carry no outcome return nil, nil.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*Outcome, error) {
	if p.webhookSecret == "" {
		return nil, fmt.Errorf("stripe: webhook secret not set: %w", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:
	default:
		p.log.Debug("ignoring stripe event", slog.String("type", string(event.Type)))
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("stripe: decode session: %w", err)
	}

	out := sessionOutcome(&sess)
	if event.Type == stripe.EventTypeCheckoutSessionAsyncPaymentFailed {
		out.Status = StatusFailed
		out.Reason = "payment was declined"
	}
	return out, nil
}

func sessionOutcome(sess *stripe.CheckoutSession) *Outcome {
	out := &Outcome{
		PaymentID:   sess.ClientReferenceID,
		ProviderRef: sess.ID,
		Status:      StatusPending,
	}
	if sess.PaymentIntent != nil {
		out.PaymentRef = sess.PaymentIntent.ID
	}

	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		out.Status = StatusSucceeded
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		out.Status = StatusFailed
		out.Reason = "checkout expired"
	}
	return out
}

// stripeLogger routes stripe-go's leveled logging into slog.
type stripeLogger struct {
	log *slog.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l stripeLogger) Infof(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l stripeLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l stripeLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
