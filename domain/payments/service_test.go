package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/testutil"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/toast"
)

type fakeProvider struct {
	reqs []CheckoutRequest
	err  error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &Checkout{
		Provider:    "fake",
		PaymentID:   req.PaymentID,
		ProviderRef: "ref_" + req.PaymentID,
		RedirectURL: "https://pay.example/" + req.PaymentID,
	}, nil
}

type fixture struct {
	svc      *Service
	repo     *Repository
	registry *views.Registry
	clock    *toast.ManualClock
	provider *fakeProvider
}

func newFixture(t *testing.T, provider Provider) *fixture {
	t.Helper()
	log := testutil.DiscardLogger()
	catalog, err := NewCatalog()
	require.NoError(t, err)

	repo := NewRepository(testutil.NewDB(t), log)
	clock := toast.NewManualClock(time.Now())
	registry := views.NewRegistryWithClock(config.ViewsConfig{}, clock, log)
	cfg := &config.Config{PublicURL: "https://getcalls.in/"}
	cfg.Payments.RazorpayKeyID = "rzp_test_key"
	cfg.Payments.RazorpayKeySecret = "secret"
	cfg.Payments.StripePublishable = "pk_test_123"

	fp, _ := provider.(*fakeProvider)
	return &fixture{
		svc: NewService(ServiceParams{
			Catalog:  catalog,
			Provider: provider,
			Razorpay: newRazorpayProvider(cfg, &fakeOrders{}, log),
			Repo:     repo,
			Views:    registry,
			Config:   cfg,
			Log:      log,
		}),
		repo:     repo,
		registry: registry,
		clock:    clock,
		provider: fp,
	}
}

func TestBegin_UsesCatalogAmount(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v := tf.registry.Create()
	v.Modal.Open(PaymentModal, map[string]any{"plan": "Pro", "billing": "once", "amount": 1})

	co, err := tf.svc.Begin(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/"+co.PaymentID, co.RedirectURL)

	require.Len(t, tf.provider.reqs, 1)
	req := tf.provider.reqs[0]
	assert.Equal(t, int64(800000), req.AmountMinor)
	assert.Equal(t, "INR", req.Currency)
	assert.Equal(t, "Pro Plan - One-time", req.Description)
	assert.Contains(t, req.SuccessURL, "https://getcalls.in/payments/stripe/return?")
	assert.Contains(t, req.SuccessURL, "session_id={CHECKOUT_SESSION_ID}")
	assert.Contains(t, req.CancelURL, "cancelled=1")

	stored, err := tf.repo.Get(context.Background(), co.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, "ref_"+co.PaymentID, stored.ProviderRef)
	assert.Equal(t, int64(800000), stored.AmountMinor)

	payload := v.Modal.Payload()
	assert.Equal(t, co.PaymentID, payload["paymentId"])
	assert.Equal(t, int64(8000), payload["amount"])
}

func TestBegin_Monthly(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v := tf.registry.Create()
	v.Modal.Open(PaymentModal, map[string]any{"plan": "business", "billing": "monthly"})

	_, err := tf.svc.Begin(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, int64(600000), tf.provider.reqs[0].AmountMinor)
	assert.Equal(t, BillingMonthly, tf.provider.reqs[0].Billing)
}

func TestBegin_Rejects(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})

	v := tf.registry.Create()
	_, err := tf.svc.Begin(context.Background(), v)
	assert.ErrorIs(t, err, apperror.ErrBadRequest, "dialog closed")

	v.Modal.Open(PaymentModal, map[string]any{"plan": "Platinum"})
	_, err = tf.svc.Begin(context.Background(), v)
	assert.ErrorIs(t, err, apperror.ErrBadRequest, "unknown plan")

	v.Modal.Open(PaymentModal, map[string]any{"plan": "Pro", "billing": "weekly"})
	_, err = tf.svc.Begin(context.Background(), v)
	assert.ErrorIs(t, err, apperror.ErrBadRequest, "unknown billing")

	assert.Empty(t, tf.provider.reqs)
}

func TestBegin_NotConfigured(t *testing.T) {
	tf := newFixture(t, nil)
	v := tf.registry.Create()
	v.Modal.Open(PaymentModal, map[string]any{"plan": "Pro"})

	_, err := tf.svc.Begin(context.Background(), v)
	assert.ErrorIs(t, err, apperror.ErrNotConfigured)

	toasts := v.Toasts.List()
	require.Len(t, toasts, 1)
	assert.Equal(t, MsgNotConfigured, toasts[0].Message)
	assert.Equal(t, toast.KindError, toasts[0].Kind)
}

func TestBegin_ProviderFailure(t *testing.T) {
	tf := newFixture(t, &fakeProvider{err: errors.New("rate limited")})
	v := tf.registry.Create()
	v.Modal.Open(PaymentModal, map[string]any{"plan": "Starter"})

	_, err := tf.svc.Begin(context.Background(), v)
	assert.ErrorIs(t, err, apperror.ErrProvider)

	toasts := v.Toasts.List()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Payment failed: could not start checkout", toasts[0].Message)

	failed, err := tf.repo.List(context.Background(), StatusFailed, 10)
	require.NoError(t, err)
	assert.Len(t, failed, 1)
}

func beginPayment(t *testing.T, tf *fixture) (*views.View, *Checkout) {
	t.Helper()
	v := tf.registry.Create()
	v.Modal.Open(PaymentModal, map[string]any{"plan": "Pro"})
	co, err := tf.svc.Begin(context.Background(), v)
	require.NoError(t, err)
	return v, co
}

func TestComplete_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		message string
		kind    toast.Kind
		ttl     time.Duration
	}{
		{"succeeded", Outcome{Status: StatusSucceeded, PaymentRef: "pi_1"}, MsgSucceeded, toast.KindSuccess, 4500 * time.Millisecond},
		{"failed", Outcome{Status: StatusFailed, Reason: "card declined"}, "Payment failed: card declined", toast.KindError, 3500 * time.Millisecond},
		{"cancelled", Outcome{Status: StatusCancelled}, MsgCancelled, toast.KindInfo, 2500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := newFixture(t, &fakeProvider{})
			v, co := beginPayment(t, tf)

			o := tt.outcome
			o.PaymentID = co.PaymentID
			p, err := tf.svc.Complete(context.Background(), o)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome.Status, p.Status)

			toasts := v.Toasts.List()
			require.Len(t, toasts, 1)
			assert.Equal(t, tt.message, toasts[0].Message)
			assert.Equal(t, tt.kind, toasts[0].Kind)
			assert.Equal(t, tt.ttl, toasts[0].TTL)
			assert.Equal(t, string(tt.outcome.Status), v.Modal.Payload()["status"])
		})
	}
}

func TestComplete_AppliesOnce(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v, co := beginPayment(t, tf)
	ctx := context.Background()

	_, err := tf.svc.Complete(ctx, Outcome{ProviderRef: co.ProviderRef, Status: StatusSucceeded})
	require.NoError(t, err)
	p, err := tf.svc.Complete(ctx, Outcome{PaymentID: co.PaymentID, Status: StatusFailed, Reason: "late"})
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, p.Status)
	assert.Equal(t, 1, v.Toasts.Len())
}

func TestComplete_SuccessOverridesCancel(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	_, co := beginPayment(t, tf)
	ctx := context.Background()

	_, err := tf.svc.Complete(ctx, Outcome{PaymentID: co.PaymentID, Status: StatusCancelled})
	require.NoError(t, err)
	p, err := tf.svc.Complete(ctx, Outcome{PaymentID: co.PaymentID, Status: StatusSucceeded})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, p.Status)
}

func TestComplete_PendingAndUnknown(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v, co := beginPayment(t, tf)

	p, err := tf.svc.Complete(context.Background(), Outcome{PaymentID: co.PaymentID, Status: StatusPending})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Zero(t, v.Toasts.Len())

	_, err = tf.svc.Complete(context.Background(), Outcome{PaymentID: "missing", Status: StatusSucceeded})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestComplete_ViewGone(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v, co := beginPayment(t, tf)
	tf.registry.Remove(v.ID)

	p, err := tf.svc.Complete(context.Background(), Outcome{PaymentID: co.PaymentID, Status: StatusSucceeded})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, p.Status)
}

func TestComplete_LeavesViewIdle(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v, co := beginPayment(t, tf)

	tf.clock.Advance(time.Minute)
	_, err := tf.svc.Complete(context.Background(), Outcome{PaymentID: co.PaymentID, Status: StatusSucceeded})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Toasts.Len())

	// a provider callback is not browser activity
	assert.Equal(t, 1, tf.registry.Sweep(tf.clock.Now()))
}

func TestCancel_ChecksView(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v, co := beginPayment(t, tf)

	_, err := tf.svc.Cancel(context.Background(), "other-view", co.PaymentID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p, err := tf.svc.Cancel(context.Background(), v.ID, co.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, p.Status)
}

func TestCompleteRazorpay(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v, co := beginPayment(t, tf)
	ctx := context.Background()

	_, err := tf.svc.CompleteRazorpay(ctx, v.ID, RazorpayResult{
		OrderID: co.ProviderRef, PaymentID: "pay_1", Signature: "forged",
	})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = tf.svc.CompleteRazorpay(ctx, "someone-else", RazorpayResult{OrderID: co.ProviderRef, Status: "dismissed"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p, err := tf.svc.CompleteRazorpay(ctx, v.ID, RazorpayResult{
		OrderID:   co.ProviderRef,
		PaymentID: "pay_1",
		Signature: tf.svc.razorpay.Signature(co.ProviderRef, "pay_1"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, p.Status)
	assert.Equal(t, "pay_1", p.PaymentRef)
}

func TestCompleteRazorpay_Failed(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	v, co := beginPayment(t, tf)

	p, err := tf.svc.CompleteRazorpay(context.Background(), v.ID, RazorpayResult{
		OrderID: co.ProviderRef, Status: "failed", Description: "Payment processing cancelled by user",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "Payment failed: Payment processing cancelled by user", v.Toasts.List()[0].Message)
}

func TestRepository_ExpirePending(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testutil.NewDB(t), testutil.DiscardLogger())

	old := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	fresh := old.Add(48 * time.Hour)
	for id, created := range map[string]time.Time{"old": old, "fresh": fresh} {
		require.NoError(t, repo.Insert(ctx, &Payment{
			ID: id, Provider: "fake", Plan: "pro", Billing: BillingOnce,
			AmountMinor: 800000, Currency: "INR", Status: StatusPending,
			CreatedAt: created, UpdatedAt: created,
		}))
	}

	n, err := repo.ExpirePending(ctx, old.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := repo.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, p.Status)

	p, err = repo.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusExpired: 1, StatusPending: 1}, counts)
}

func TestService_PublicKey(t *testing.T) {
	tf := newFixture(t, &fakeProvider{})
	assert.Empty(t, tf.svc.PublicKey())

	tf.svc.provider = tf.svc.razorpay
	assert.Equal(t, "rzp_test_key", tf.svc.PublicKey())

	tf.svc.provider = NewStripeProvider(stripeConfig(""), testutil.DiscardLogger())
	assert.Equal(t, "pk_test_123", tf.svc.PublicKey())
}
