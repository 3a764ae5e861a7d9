package email

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

var Module = fx.Module("email",
	fx.Provide(
		NewTemplateService,
		NewSender,
	),
)

// NewSender picks EmailJS, then Mailgun. It returns nil when neither is
// configured.
func NewSender(cfg *config.Config, templates *TemplateService, log *slog.Logger) Sender {
	log = log.With(logger.Scope("email"))

	if s := NewEmailJSSender(&cfg.Email, log); s != nil {
		log.Info("email backend selected", slog.String("provider", s.Name()))
		return s
	}
	if s := NewMailgunSender(&cfg.Email, templates, log); s != nil {
		log.Info("email backend selected", slog.String("provider", s.Name()))
		return s
	}

	log.Warn("no email backend configured, leads fall back to mailto")
	return nil
}
