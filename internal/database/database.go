package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/fx"
	_ "modernc.org/sqlite"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

var Module = fx.Module("database",
	fx.Provide(
		NewBunDB,
		fx.Annotate(
			func(db *bun.DB) bun.IDB { return db },
			fx.As(new(bun.IDB)),
		),
	),
)

// NewBunDB opens the configured database and closes it on shutdown.
func NewBunDB(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*bun.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database", logger.Scope("database"))
			return db.Close()
		},
	})
	return db, nil
}

// Open connects to sqlite (modernc, pure Go) or postgres (pgx pool) and wraps
// the connection in bun with the matching dialect.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*bun.DB, error) {
	log = log.With(logger.Scope("database"))

	var db *bun.DB
	if cfg.IsPostgres() {
		pool, err := newPgxPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
		log.Info("database opened",
			slog.String("driver", "postgres"),
			slog.String("host", cfg.Host),
			slog.String("database", cfg.Database),
		)
	} else {
		sqldb, err := sql.Open("sqlite", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY.
		sqldb.SetMaxOpenConns(1)
		if err := sqldb.PingContext(ctx); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
		log.Info("database opened",
			slog.String("driver", "sqlite"),
			slog.String("path", cfg.SQLitePath),
		)
	}

	if cfg.QueryDebug {
		db.AddQueryHook(&queryLoggingHook{log: log.With(logger.Scope("bun"))})
	}
	return db, nil
}

// OpenSQLite opens a sqlite database at path. Tests use it with a temp dir.
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*bun.DB, error) {
	return Open(ctx, config.DatabaseConfig{Driver: "sqlite", SQLitePath: path}, log)
}

func newPgxPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolConfig.MaxConnIdleTime = cfg.MaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Ping checks the connection; the readiness probe calls it.
func Ping(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("database not initialised")
	}
	return db.PingContext(ctx)
}

// queryLoggingHook implements bun.QueryHook for query logging
type queryLoggingHook struct {
	log *slog.Logger
}

func (h *queryLoggingHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLoggingHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.log.Error("query error",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
			logger.Error(event.Err),
		)
		return
	}

	if duration > time.Second {
		h.log.Warn("slow query",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
		)
		return
	}

	h.log.Debug("query",
		slog.String("query", event.Query),
		slog.Duration("duration", duration),
	)
}
