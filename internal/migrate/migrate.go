// Package migrate runs the embedded goose migrations against the bun database.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.uber.org/fx"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/migrations"
	"github.com/getcalls/website/pkg/logger"
)

// Module provides the migrator and, when DB_AUTO_MIGRATE is set, runs it on
// start before the HTTP server accepts traffic.
var Module = fx.Module("migrate",
	fx.Provide(NewMigrator),
	fx.Invoke(RunOnStart),
)

// goose keeps its dialect and FS in package state.
var gooseMu sync.Mutex

// Migrator handles database migrations.
type Migrator struct {
	db  *bun.DB
	log *slog.Logger
}

// NewMigrator creates a new Migrator instance.
func NewMigrator(db *bun.DB, log *slog.Logger) *Migrator {
	return &Migrator{
		db:  db,
		log: log.With(logger.Scope("migrator")),
	}
}

// RunOnStart applies pending migrations during fx start.
func RunOnStart(lc fx.Lifecycle, m *Migrator, cfg *config.Config) {
	if !cfg.Database.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.Up(ctx)
		},
	})
}

func (m *Migrator) gooseDialect() string {
	if m.db.Dialect().Name() == dialect.PG {
		return "postgres"
	}
	return "sqlite3"
}

func (m *Migrator) with(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(m.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return fn()
}

// Up runs all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	m.log.Info("running database migrations", slog.String("dialect", m.gooseDialect()))

	err := m.with(func() error {
		return goose.UpContext(ctx, m.db.DB, ".")
	})
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	v, _ := m.Version(ctx)
	m.log.Info("migrations completed", slog.Int64("version", v))
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down(ctx context.Context) error {
	m.log.Info("rolling back last migration")

	err := m.with(func() error {
		return goose.DownContext(ctx, m.db.DB, ".")
	})
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Version returns the current database version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var v int64
	err := m.with(func() error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, m.db.DB)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}
