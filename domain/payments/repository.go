package payments

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
)

// Repository handles database operations for payments
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new payments repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("payments.repo")),
	}
}

// Insert stores a new payment.
func (r *Repository) Insert(ctx context.Context, p *Payment) error {
	if _, err := r.db.NewInsert().Model(p).Exec(ctx); err != nil {
		r.log.Error("failed to insert payment", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// SetProviderRef records the provider's id for the checkout.
func (r *Repository) SetProviderRef(ctx context.Context, id, ref string) error {
	_, err := r.db.NewUpdate().
		Model((*Payment)(nil)).
		Set("provider_ref = ?", ref).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// Get returns a payment by id.
func (r *Repository) Get(ctx context.Context, id string) (*Payment, error) {
	return r.getBy(ctx, "id", id)
}

// GetByProviderRef returns a payment by the provider's session or order id.
func (r *Repository) GetByProviderRef(ctx context.Context, ref string) (*Payment, error) {
	return r.getBy(ctx, "provider_ref", ref)
}

func (r *Repository) getBy(ctx context.Context, column, value string) (*Payment, error) {
	if value == "" {
		return nil, apperror.NewNotFound("payment", value)
	}
	p := new(Payment)
	err := r.db.NewSelect().
		Model(p).
		Where("? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound("payment", value)
		}
		r.log.Error("failed to get payment", slog.String(column, value), logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return p, nil
}

// Transition moves a pending payment to status. A success may also settle a
// cancelled or expired payment, since the provider captured the money. It
// reports false when nothing changed, so repeated callbacks apply once.
func (r *Repository) Transition(ctx context.Context, id string, status Status, paymentRef, reason string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*Payment)(nil)).
		Set("status = ?", status).
		Set("payment_ref = ?", paymentRef).
		Set("failure_reason = ?", reason).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status IN (?)", bun.In(settleableFrom(status))).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to update payment", slog.String("id", id), logger.Error(err))
		return false, apperror.ErrDatabase.WithInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.ErrDatabase.WithInternal(err)
	}
	return n == 1, nil
}

func settleableFrom(to Status) []Status {
	if to == StatusSucceeded {
		return []Status{StatusPending, StatusCancelled, StatusExpired}
	}
	return []Status{StatusPending}
}

// ExpirePending marks payments still pending since before as expired and
// returns how many changed.
func (r *Repository) ExpirePending(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*Payment)(nil)).
		Set("status = ?", StatusExpired).
		Set("updated_at = ?", time.Now().UTC()).
		Where("status = ?", StatusPending).
		Where("created_at < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to expire payments", logger.Error(err))
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return int(n), nil
}

// List returns the newest payments first. An empty status matches all.
func (r *Repository) List(ctx context.Context, status Status, limit int) ([]Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Payment
	q := r.db.NewSelect().Model(&out).Order("created_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// CountByStatus returns the number of payments per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `bun:"status"`
		Count  int    `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*Payment)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		r.log.Error("failed to count payments", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make(map[Status]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
