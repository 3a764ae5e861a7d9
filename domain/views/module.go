package views

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the page-view registry and its HTTP surface.
var Module = fx.Module("views",
	fx.Provide(
		NewRegistry,
		NewHandler,
	),
	fx.Invoke(
		RegisterRoutes,
		RegisterLifecycle,
	),
)

// RegisterLifecycle releases every view's timers on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, r *Registry) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			r.Close()
			return nil
		},
	})
}
