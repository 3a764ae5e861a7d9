package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

const emailJSSendPath = "/api/v1.0/email/send"

// EmailJSSender posts template parameters to the EmailJS REST API. The
// templates themselves live in the EmailJS dashboard.
type EmailJSSender struct {
	cfg    *config.EmailConfig
	log    *slog.Logger
	client *resty.Client
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// NewEmailJSSender returns nil when EmailJS is not configured.
func NewEmailJSSender(cfg *config.EmailConfig, log *slog.Logger) *EmailJSSender {
	if !cfg.EmailJSConfigured() {
		return nil
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.EmailJSBaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &EmailJSSender{
		cfg:    cfg,
		log:    log.With(logger.Scope("email.emailjs")),
		client: client,
	}
}

func (s *EmailJSSender) Name() string { return "emailjs" }

func (s *EmailJSSender) templateFor(id string) (string, error) {
	switch id {
	case TemplateLeadNotification:
		return s.cfg.EmailJSTemplateID, nil
	case TemplateLeadConfirmation:
		return s.cfg.AutoReplyTemplate(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
}

// Send maps the logical template to the configured EmailJS template. The
// recipient fields are passed as template params.
func (s *EmailJSSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	templateID, err := s.templateFor(msg.TemplateID)
	if err != nil {
		return nil, err
	}

	params := make(map[string]string, len(msg.Params)+2)
	for k, v := range msg.Params {
		params[k] = v
	}
	if msg.To != "" {
		if _, ok := params["to_email"]; !ok {
			params["to_email"] = msg.To
		}
	}
	if msg.ReplyTo != "" {
		if _, ok := params["reply_to"]; !ok {
			params["reply_to"] = msg.ReplyTo
		}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(emailJSRequest{
			ServiceID:      s.cfg.EmailJSServiceID,
			TemplateID:     templateID,
			UserID:         s.cfg.EmailJSPublicKey,
			AccessToken:    s.cfg.EmailJSPrivateKey,
			TemplateParams: params,
		}).
		Post(emailJSSendPath)
	if err != nil {
		return nil, fmt.Errorf("emailjs: %w", err)
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		s.log.Warn("emailjs rejected message",
			slog.Int("status", resp.StatusCode()),
			slog.String("template", templateID),
			slog.String("body", body))
		return nil, fmt.Errorf("emailjs: status %d: %s", resp.StatusCode(), body)
	}

	return &SendResult{Provider: s.Name()}, nil
}
