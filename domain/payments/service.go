package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"

	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
	"github.com/getcalls/website/pkg/metrics"
	"github.com/getcalls/website/pkg/toast"
	"github.com/getcalls/website/pkg/tracing"
)

// PaymentModal is the dialog id of the checkout summary.
const PaymentModal = "payment"

const (
	MsgSucceeded     = "🎉 Payment successful! We'll start your website now."
	MsgCancelled     = "Payment cancelled"
	MsgNotConfigured = "Payments are not configured yet."

	succeededTTL     = 4500 * time.Millisecond
	failedTTL        = 3500 * time.Millisecond
	cancelledTTL     = 2500 * time.Millisecond
	notConfiguredTTL = 3500 * time.Millisecond
)

// FailedMessage is the toast for a failed payment.
func FailedMessage(reason string) string {
	if reason == "" {
		reason = "unknown error"
	}
	return "Payment failed: " + reason
}

// Service starts checkouts and applies provider verdicts.
type Service struct {
	catalog  *Catalog
	provider Provider
	stripe   *StripeProvider
	razorpay *RazorpayProvider
	repo     *Repository
	views    *views.Registry
	currency string
	baseURL  string
	keys     map[string]string
	log      *slog.Logger
	now      func() time.Time
}

// ServiceParams groups the service's collaborators. Stripe and Razorpay are
// nil when not configured; Provider is whichever one is active.
type ServiceParams struct {
	fx.In

	Catalog  *Catalog
	Provider Provider
	Stripe   *StripeProvider
	Razorpay *RazorpayProvider
	Repo     *Repository
	Views    *views.Registry
	Config   *config.Config
	Log      *slog.Logger
}

func NewService(p ServiceParams) *Service {
	currency := p.Catalog.Currency
	if p.Config.Payments.Currency != "" {
		currency = p.Config.Payments.Currency
	}
	return &Service{
		catalog:  p.Catalog,
		provider: p.Provider,
		stripe:   p.Stripe,
		razorpay: p.Razorpay,
		repo:     p.Repo,
		views:    p.Views,
		currency: strings.ToUpper(currency),
		baseURL:  strings.TrimSuffix(p.Config.PublicURL, "/"),
		keys: map[string]string{
			"stripe":   p.Config.Payments.StripePublishable,
			"razorpay": p.Config.Payments.RazorpayKeyID,
		},
		log: p.Log.With(logger.Scope("payments.svc")),
		now: time.Now,
	}
}

// Catalog returns the plans on sale.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Configured reports whether a checkout provider is available.
func (s *Service) Configured() bool { return s.provider != nil }

// ProviderName is the active provider, or "" when none.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// PublicKey is the browser-safe key of the active provider, or "".
func (s *Service) PublicKey() string {
	return s.keys[s.ProviderName()]
}

// Begin starts a checkout for the plan and billing in the open payment
// dialog's payload. Any amount in the payload is ignored; the price comes
// from the catalog.
func (s *Service) Begin(ctx context.Context, v *views.View) (*Checkout, error) {
	ctx, span := tracing.Start(ctx, "payments.begin", attribute.String("getcalls.view.id", v.ID))
	defer span.End()

	if !v.Modal.IsOpen(PaymentModal) {
		return nil, apperror.NewBadRequest("payment dialog is not open")
	}
	payload := v.Modal.Payload()
	planName, _ := payload["plan"].(string)
	billingRaw, _ := payload["billing"].(string)

	plan, ok := s.catalog.Find(planName)
	if !ok {
		return nil, apperror.NewBadRequest(fmt.Sprintf("unknown plan %q", planName))
	}
	billing, err := ParseBilling(billingRaw)
	if err != nil {
		return nil, apperror.NewBadRequest(err.Error())
	}

	if s.provider == nil {
		v.Toast(MsgNotConfigured, toast.KindError, notConfiguredTTL)
		return nil, apperror.ErrNotConfigured.WithMessage(MsgNotConfigured)
	}
	provider := s.provider.Name()

	now := s.now().UTC()
	payment := &Payment{
		ID:          uuid.NewString(),
		ViewID:      v.ID,
		Provider:    provider,
		Plan:        plan.ID,
		Billing:     billing,
		AmountMinor: plan.Price(billing) * 100,
		Currency:    s.currency,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, payment); err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	checkout, err := s.provider.CreateCheckout(ctx, CheckoutRequest{
		PaymentID:   payment.ID,
		ViewID:      v.ID,
		Plan:        plan,
		Billing:     billing,
		AmountMinor: payment.AmountMinor,
		Currency:    payment.Currency,
		Description: fmt.Sprintf("%s Plan - %s", plan.Name, billing.Label()),
		SuccessURL:  s.returnURL(v.ID, payment.ID, false),
		CancelURL:   s.returnURL(v.ID, payment.ID, true),
	})
	if err != nil {
		tracing.Fail(span, err)
		s.log.Warn("checkout failed to start",
			slog.String("payment_id", payment.ID),
			slog.String("provider", provider),
			logger.Error(err))
		reason := "could not start checkout"
		if _, terr := s.repo.Transition(ctx, payment.ID, StatusFailed, "", reason); terr != nil {
			s.log.Warn("payment status not stored", logger.Error(terr))
		}
		metrics.Payments.WithLabelValues(provider, string(StatusFailed)).Inc()
		v.Toast(FailedMessage(reason), toast.KindError, failedTTL)
		return nil, apperror.ErrProvider.WithInternal(err)
	}

	if err := s.repo.SetProviderRef(ctx, payment.ID, checkout.ProviderRef); err != nil {
		s.log.Warn("provider ref not stored", slog.String("payment_id", payment.ID), logger.Error(err))
	}
	metrics.Payments.WithLabelValues(provider, string(StatusPending)).Inc()

	v.Modal.Update(PaymentModal, map[string]any{
		"paymentId": payment.ID,
		"status":    string(StatusPending),
		"amount":    plan.Price(billing),
	})
	return checkout, nil
}

// returnURL is where Stripe sends the browser back to.
func (s *Service) returnURL(viewID, paymentID string, cancelled bool) string {
	q := url.Values{}
	q.Set("view", viewID)
	q.Set("payment", paymentID)
	if cancelled {
		q.Set("cancelled", "1")
		return s.baseURL + "/payments/stripe/return?" + q.Encode()
	}
	// Stripe substitutes the literal placeholder, which must stay unescaped.
	return s.baseURL + "/payments/stripe/return?" + q.Encode() + "&session_id={CHECKOUT_SESSION_ID}"
}

// Complete applies a provider verdict to the stored payment and tells the
// view, when it is still alive. A verdict on an already settled payment
// changes nothing and returns the stored payment.
func (s *Service) Complete(ctx context.Context, o Outcome) (*Payment, error) {
	ctx, span := tracing.Start(ctx, "payments.complete",
		attribute.String("getcalls.payment.status", string(o.Status)))
	defer span.End()

	payment, err := s.lookup(ctx, o)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	if o.Status == StatusPending {
		return payment, nil
	}

	applied, err := s.repo.Transition(ctx, payment.ID, o.Status, o.PaymentRef, o.Reason)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	if !applied {
		s.log.Debug("payment already settled",
			slog.String("payment_id", payment.ID),
			slog.String("status", string(payment.Status)))
		return payment, nil
	}

	payment.Status = o.Status
	payment.PaymentRef = o.PaymentRef
	payment.FailureReason = o.Reason
	metrics.Payments.WithLabelValues(payment.Provider, string(o.Status)).Inc()
	s.log.Info("payment settled",
		slog.String("payment_id", payment.ID),
		slog.String("provider", payment.Provider),
		slog.String("status", string(o.Status)))

	s.notify(payment)
	return payment, nil
}

func (s *Service) lookup(ctx context.Context, o Outcome) (*Payment, error) {
	if o.PaymentID != "" {
		return s.repo.Get(ctx, o.PaymentID)
	}
	return s.repo.GetByProviderRef(ctx, o.ProviderRef)
}

// notify shows the outcome on the view that started the payment.
func (s *Service) notify(p *Payment) {
	if s.views == nil {
		return
	}
	v, ok := s.views.Lookup(p.ViewID)
	if !ok {
		return
	}

	switch p.Status {
	case StatusSucceeded:
		v.Toast(MsgSucceeded, toast.KindSuccess, succeededTTL)
	case StatusFailed:
		v.Toast(FailedMessage(p.FailureReason), toast.KindError, failedTTL)
	case StatusCancelled:
		v.Toast(MsgCancelled, toast.KindInfo, cancelledTTL)
	default:
		return
	}
	v.Modal.Update(PaymentModal, map[string]any{"status": string(p.Status)})
}

// CompleteStripeSession verifies a returning Stripe session with the API
// and applies it.
func (s *Service) CompleteStripeSession(ctx context.Context, sessionID string) (*Payment, error) {
	if s.stripe == nil {
		return nil, apperror.ErrNotConfigured
	}
	o, err := s.stripe.SessionOutcome(ctx, sessionID)
	if err != nil {
		return nil, apperror.ErrProvider.WithInternal(err)
	}
	return s.Complete(ctx, *o)
}

// HandleStripeWebhook verifies and applies a Stripe webhook delivery.
// Events without a payment outcome return nil, nil.
func (s *Service) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*Payment, error) {
	if s.stripe == nil {
		return nil, apperror.ErrNotConfigured
	}
	o, err := s.stripe.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return nil, apperror.ErrUnauthorized.WithInternal(err)
		}
		return nil, apperror.NewBadRequest("malformed event")
	}
	if o == nil {
		return nil, nil
	}
	return s.Complete(ctx, *o)
}

// Cancel records that the browser came back from a hosted checkout without
// paying. The payment must belong to viewID.
func (s *Service) Cancel(ctx context.Context, viewID, paymentID string) (*Payment, error) {
	payment, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.ViewID != viewID {
		return nil, apperror.NewNotFound("payment", paymentID)
	}
	return s.Complete(ctx, Outcome{PaymentID: payment.ID, Status: StatusCancelled})
}

// RazorpayResult is what checkout.js reports back to the page.
type RazorpayResult struct {
	OrderID     string `json:"razorpay_order_id" form:"razorpay_order_id"`
	PaymentID   string `json:"razorpay_payment_id" form:"razorpay_payment_id"`
	Signature   string `json:"razorpay_signature" form:"razorpay_signature"`
	Status      string `json:"status" form:"status"`
	Description string `json:"description" form:"description"`
}

// CompleteRazorpay applies a checkout.js callback. Success must carry a
// valid signature; failure and dismissal only need the order id, since
// they grant nothing. The order must belong to viewID.
func (s *Service) CompleteRazorpay(ctx context.Context, viewID string, r RazorpayResult) (*Payment, error) {
	if s.razorpay == nil {
		return nil, apperror.ErrNotConfigured
	}
	payment, err := s.repo.GetByProviderRef(ctx, r.OrderID)
	if err != nil {
		return nil, err
	}
	if payment.ViewID != viewID {
		return nil, apperror.NewNotFound("payment", r.OrderID)
	}

	o := Outcome{PaymentID: payment.ID, ProviderRef: r.OrderID, PaymentRef: r.PaymentID}
	switch r.Status {
	case "", "success", "succeeded":
		if !s.razorpay.Verify(r.OrderID, r.PaymentID, r.Signature) {
			return nil, apperror.ErrUnauthorized
		}
		o.Status = StatusSucceeded
	case "failed":
		o.Status = StatusFailed
		o.Reason = r.Description
	case "cancelled", "dismissed":
		o.Status = StatusCancelled
	default:
		return nil, apperror.NewBadRequest(fmt.Sprintf("unknown status %q", r.Status))
	}
	return s.Complete(ctx, o)
}
