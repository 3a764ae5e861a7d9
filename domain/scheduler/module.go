package scheduler

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
)

// Module provides scheduled maintenance tasks
var Module = fx.Module("scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(
		RegisterTasks,
		RegisterSchedulerLifecycle,
	),
)

// TaskParams contains dependencies for creating scheduled tasks
type TaskParams struct {
	fx.In
	Scheduler *Scheduler
	Views     *views.Registry
	Payments  *payments.Repository `optional:"true"`
	Config    *config.Config
	Log       *slog.Logger
}

// RegisterTasks registers all scheduled tasks
func RegisterTasks(p TaskParams) error {
	sc := p.Config.Scheduler
	if !sc.Enabled {
		p.Log.Info("scheduler disabled, skipping task registration")
		return nil
	}

	sweep := NewViewSweepTask(p.Views, p.Log)
	if err := p.Scheduler.AddTask("view_sweep", sc.ViewSweepSchedule, p.Config.Views.SweepInterval, sweep.Run); err != nil {
		return err
	}

	if p.Payments != nil {
		expire := NewPaymentExpireTask(p.Payments, sc.PaymentPendingTTL, p.Log)
		if err := p.Scheduler.AddTask("payment_expire", sc.PaymentExpireSchedule, sc.PaymentExpireInterval, expire.Run); err != nil {
			return err
		}
	}

	p.Log.Info("registered scheduled tasks", slog.Any("tasks", p.Scheduler.ListTasks()))
	return nil
}

// RegisterSchedulerLifecycle registers the scheduler with fx lifecycle
func RegisterSchedulerLifecycle(lc fx.Lifecycle, s *Scheduler, cfg *config.Config) {
	if !cfg.Scheduler.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
