package payments

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
	"github.com/getcalls/website/pkg/ratelimit"
)

// Module provides the plan catalog, checkout providers and payment routes.
var Module = fx.Module("payments",
	fx.Provide(
		NewCatalog,
		NewRepository,
		newStripeFromConfig,
		NewRazorpayProvider,
		NewActiveProvider,
		NewService,
		NewHandler,
		NewLimiter,
	),
	fx.Invoke(RegisterRoutes),
)

func newStripeFromConfig(cfg *config.Config, log *slog.Logger) *StripeProvider {
	return NewStripeProvider(&cfg.Payments, log)
}

// NewActiveProvider picks the provider named by config. It returns nil when
// payments are not configured.
func NewActiveProvider(cfg *config.Config, stripe *StripeProvider, razorpay *RazorpayProvider, log *slog.Logger) Provider {
	log = log.With(logger.Scope("payments"))

	var p Provider
	switch cfg.Payments.ResolvedProvider() {
	case "stripe":
		if stripe != nil {
			p = stripe
		}
	case "razorpay":
		if razorpay != nil {
			p = razorpay
		}
	}
	if p == nil {
		log.Warn("no payment provider configured, checkout is disabled")
		return nil
	}
	log.Info("payment provider selected", slog.String("provider", p.Name()))
	return p
}

// Limiter is the per-client budget for starting checkouts.
type Limiter struct {
	*ratelimit.Keyed
}

func NewLimiter(cfg *config.Config) *Limiter {
	return &Limiter{ratelimit.New(ratelimit.Limit{
		PerMinute: cfg.RateLimit.CheckoutPerMinute,
		Burst:     cfg.RateLimit.CheckoutBurst,
	})}
}
