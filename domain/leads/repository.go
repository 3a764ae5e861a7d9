package leads

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

// Repository handles database operations for leads
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new leads repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("leads.repo")),
	}
}

// Insert stores a new lead.
func (r *Repository) Insert(ctx context.Context, lead *Lead) error {
	if _, err := r.db.NewInsert().Model(lead).Exec(ctx); err != nil {
		r.log.Error("failed to insert lead", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// UpdateStatus records the delivery outcome of a lead.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, provider, errMsg string) error {
	_, err := r.db.NewUpdate().
		Model((*Lead)(nil)).
		Set("status = ?", status).
		Set("provider = ?", provider).
		Set("error = ?", errMsg).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		r.log.Error("failed to update lead status", slog.String("id", id), logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// Get returns one lead.
func (r *Repository) Get(ctx context.Context, id string) (*Lead, error) {
	lead := new(Lead)
	err := r.db.NewSelect().Model(lead).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound("lead", id)
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return lead, nil
}

// List returns the newest leads first. An empty status matches all.
func (r *Repository) List(ctx context.Context, status Status, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	var out []Lead
	q := r.db.NewSelect().
		Model(&out).
		Order("created_at DESC").
		Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		r.log.Error("failed to list leads", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// CountByStatus returns the number of leads per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `bun:"status"`
		Count  int    `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*Lead)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make(map[Status]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
