package leads

import (
	"go.uber.org/fx"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/ratelimit"
)

// Module provides lead storage, delivery and the submit endpoint.
var Module = fx.Module("leads",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
		NewLimiter,
	),
	fx.Invoke(RegisterRoutes),
)

// Limiter is the per-client budget for lead submissions.
type Limiter struct {
	*ratelimit.Keyed
}

func NewLimiter(cfg *config.Config) *Limiter {
	return &Limiter{ratelimit.New(ratelimit.Limit{
		PerMinute: cfg.RateLimit.LeadsPerMinute,
		Burst:     cfg.RateLimit.LeadsBurst,
	})}
}
