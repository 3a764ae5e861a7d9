package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/getcalls/website/pkg/logger"
)

// ViewSweeper is implemented by views.Registry.
type ViewSweeper interface {
	Sweep(now time.Time) int
}

// ViewSweepTask evicts idle page views.
type ViewSweepTask struct {
	views ViewSweeper
	now   func() time.Time
	log   *slog.Logger
}

func NewViewSweepTask(views ViewSweeper, log *slog.Logger) *ViewSweepTask {
	return &ViewSweepTask{
		views: views,
		now:   time.Now,
		log:   log.With(logger.Scope("scheduler.view_sweep")),
	}
}

func (t *ViewSweepTask) Run(ctx context.Context) error {
	if n := t.views.Sweep(t.now()); n > 0 {
		t.log.Info("evicted idle views", slog.Int("count", n))
	}
	return nil
}

// PaymentExpirer is implemented by payments.Repository.
type PaymentExpirer interface {
	ExpirePending(ctx context.Context, before time.Time) (int, error)
}

// PaymentExpireTask marks checkouts that never called back as expired.
type PaymentExpireTask struct {
	payments PaymentExpirer
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewPaymentExpireTask(payments PaymentExpirer, ttl time.Duration, log *slog.Logger) *PaymentExpireTask {
	return &PaymentExpireTask{
		payments: payments,
		ttl:      ttl,
		now:      time.Now,
		log:      log.With(logger.Scope("scheduler.payment_expire")),
	}
}

func (t *PaymentExpireTask) Run(ctx context.Context) error {
	n, err := t.payments.ExpirePending(ctx, t.now().Add(-t.ttl))
	if err != nil {
		return err
	}
	if n > 0 {
		t.log.Info("expired pending payments", slog.Int("count", n))
	}
	return nil
}
