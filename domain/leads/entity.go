package leads

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the delivery state of a stored lead.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSent         Status = "sent"
	StatusFailed       Status = "failed"
	StatusUnconfigured Status = "unconfigured"
)

// DefaultPlan is recorded when the contact dialog was opened without a plan.
const DefaultPlan = "Not selected"

// Lead is a stored contact request.
type Lead struct {
	bun.BaseModel `bun:"table:leads,alias:l"`

	ID           string    `bun:"id,pk" json:"id"`
	ViewID       string    `bun:"view_id,notnull" json:"viewId"`
	Name         string    `bun:"name,notnull" json:"name"`
	Phone        string    `bun:"phone,notnull" json:"phone"`
	Email        string    `bun:"email,notnull" json:"email"`
	BusinessType string    `bun:"business_type,notnull" json:"businessType"`
	Message      string    `bun:"message,notnull" json:"message"`
	Plan         string    `bun:"plan,notnull" json:"plan"`
	Status       Status    `bun:"status,notnull" json:"status"`
	Provider     string    `bun:"provider,notnull" json:"provider,omitempty"`
	Error        string    `bun:"error,notnull" json:"error,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Form is the contact form as submitted by the browser.
type Form struct {
	Name         string `json:"name" form:"name"`
	Phone        string `json:"phone" form:"phone"`
	Email        string `json:"email" form:"email"`
	BusinessType string `json:"business_type" form:"business_type"`
	Message      string `json:"message" form:"message"`
}

// Result is returned for an accepted (valid) submission whatever the
// delivery outcome.
type Result struct {
	LeadID string `json:"leadId"`
	Status Status `json:"status"`
	// Mailto is set when the lead could not be emailed.
	Mailto string `json:"mailto,omitempty"`
	Toast  int64  `json:"toastId"`
}
