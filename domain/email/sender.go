// Package email delivers lead notifications through EmailJS or Mailgun.
package email

import (
	"context"
	"errors"
)

// Logical template ids. Each backend maps them to its own templates.
const (
	TemplateLeadNotification = "lead_notification"
	TemplateLeadConfirmation = "lead_confirmation"
)

// ErrUnknownTemplate is returned for a template id the backend cannot map.
var ErrUnknownTemplate = errors.New("email: unknown template")

// Message is a template id plus a flat set of named fields.
type Message struct {
	TemplateID string
	To         string
	ToName     string
	Subject    string
	ReplyTo    string
	Params     map[string]string
}

// SendResult describes an accepted message.
type SendResult struct {
	Provider  string
	MessageID string
}

// Sender delivers a Message. A nil Sender means email is not configured.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) (*SendResult, error)
}
