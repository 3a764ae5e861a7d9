package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

const defaultTimeout = 15 * time.Second

// MailgunSender renders the embedded templates and sends them through the
// Mailgun API.
type MailgunSender struct {
	cfg       *config.EmailConfig
	log       *slog.Logger
	client    *mailgun.MailgunImpl
	templates *TemplateService
}

// NewMailgunSender returns nil when Mailgun is not configured.
func NewMailgunSender(cfg *config.EmailConfig, templates *TemplateService, log *slog.Logger) *MailgunSender {
	if !cfg.MailgunConfigured() {
		return nil
	}

	client := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunAPIBase != "" {
		client.SetAPIBase(cfg.MailgunAPIBase)
	}

	return &MailgunSender{
		cfg:       cfg,
		log:       log.With(logger.Scope("email.mailgun")),
		client:    client,
		templates: templates,
	}
}

func (s *MailgunSender) Name() string { return "mailgun" }

// Send renders msg.TemplateID inside the base layout and sends it.
func (s *MailgunSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	rendered, err := s.templates.Render(msg.TemplateID, msg.Params, DefaultLayout)
	if err != nil {
		return nil, err
	}

	subject := msg.Subject
	if subject == "" {
		subject = rendered.Subject
	}

	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}
	from := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)

	message := s.client.NewMessage(from, subject, rendered.Text, to)
	message.SetHtml(rendered.HTML)
	if msg.ReplyTo != "" {
		message.SetReplyTo(msg.ReplyTo)
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, messageID, err := s.client.Send(sendCtx, message)
	if err != nil {
		s.log.Warn("mailgun send failed",
			slog.String("template", msg.TemplateID),
			logger.Error(err))
		return nil, fmt.Errorf("mailgun: %w", err)
	}

	s.log.Debug("email sent",
		slog.String("template", msg.TemplateID),
		slog.String("message_id", messageID))

	return &SendResult{Provider: s.Name(), MessageID: messageID}, nil
}
