// Package main runs the landing-page server.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/getcalls/website/domain/chat"
	"github.com/getcalls/website/domain/email"
	"github.com/getcalls/website/domain/health"
	"github.com/getcalls/website/domain/leads"
	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/scheduler"
	"github.com/getcalls/website/domain/site"
	"github.com/getcalls/website/domain/tracing"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/database"
	"github.com/getcalls/website/internal/migrate"
	"github.com/getcalls/website/internal/server"
	"github.com/getcalls/website/pkg/logger"
)

func main() {
	// Load .env files if present. .env.local takes precedence.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,
		tracing.Module,

		// Domain
		views.Module,
		email.Module,
		leads.Module,
		payments.Module,
		chat.Module,
		site.Module,
		scheduler.Module,
		health.Module,
	).Run()
}
