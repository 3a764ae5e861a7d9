package payments

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Payment is one checkout attempt.
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:p"`

	ID            string    `bun:"id,pk" json:"id"`
	ViewID        string    `bun:"view_id,notnull" json:"viewId"`
	Provider      string    `bun:"provider,notnull" json:"provider"`
	Plan          string    `bun:"plan,notnull" json:"plan"`
	Billing       Billing   `bun:"billing,notnull" json:"billing"`
	AmountMinor   int64     `bun:"amount_minor,notnull" json:"amountMinor"`
	Currency      string    `bun:"currency,notnull" json:"currency"`
	Status        Status    `bun:"status,notnull" json:"status"`
	ProviderRef   string    `bun:"provider_ref,notnull" json:"providerRef"`
	PaymentRef    string    `bun:"payment_ref,notnull" json:"paymentRef,omitempty"`
	FailureReason string    `bun:"failure_reason,notnull" json:"failureReason,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// CheckoutRequest is what a provider needs to start a hosted checkout.
type CheckoutRequest struct {
	PaymentID   string
	ViewID      string
	Plan        Plan
	Billing     Billing
	AmountMinor int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

// Checkout tells the browser how to continue: follow RedirectURL, or open
// the provider's widget with Options.
type Checkout struct {
	Provider    string         `json:"provider"`
	PaymentID   string         `json:"paymentId"`
	ProviderRef string         `json:"providerRef"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// Provider starts hosted checkouts. Card data never reaches this server.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

// Outcome is a provider's verdict on a payment. Either PaymentID or
// ProviderRef identifies the payment.
type Outcome struct {
	PaymentID   string
	ProviderRef string
	PaymentRef  string
	Status      Status
	Reason      string
}
