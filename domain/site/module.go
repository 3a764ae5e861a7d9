package site

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/getcalls/website/domain/chat"
	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/site/content"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
)

// Module serves the landing page.
var Module = fx.Module("site",
	fx.Provide(
		content.Load,
		NewPolicies,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

// HandlerParams are the dependencies of the page handler.
type HandlerParams struct {
	fx.In

	Registry *views.Registry
	Copy     *content.Page
	Policies *content.Policies
	Payments *payments.Service
	Chat     *chat.Service
	Config   *config.Config
	Log      *slog.Logger
}

func NewPolicies(cfg *config.Config) (*content.Policies, error) {
	return content.NewPolicies(cfg.Site)
}
