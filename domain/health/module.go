package health

import (
	"go.uber.org/fx"
)

// Module provides the probes and metrics endpoints.
var Module = fx.Module("health",
	fx.Provide(
		NewHandler,
		NewMetricsHandler,
	),
	fx.Invoke(RegisterRoutes),
)
