package health

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/getcalls/website/domain/leads"
	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/testutil"
)

func newHealthServer(t *testing.T, db *bun.DB, env string) (*echo.Echo, *views.Registry) {
	t.Helper()
	log := testutil.DiscardLogger()
	cfg := &config.Config{Environment: env}
	registry := views.NewRegistry(cfg, log)
	t.Cleanup(registry.Close)

	e := testutil.NewEcho()
	h := NewHandler(db, registry, cfg)
	var m *MetricsHandler
	if db != nil {
		m = NewMetricsHandler(leads.NewRepository(db, log), payments.NewRepository(db, log), registry, log)
	}
	RegisterRoutes(e, h, m)
	return e, registry
}

func TestHealth_Healthy(t *testing.T) {
	e, _ := newHealthServer(t, testutil.NewDB(t), "test")

	var body HealthResponse
	testutil.Do(e, http.MethodGet, "/health", nil).Status(t, http.StatusOK).JSON(t, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.Equal(t, "dev", body.Version.Version)

	testutil.Do(e, http.MethodGet, "/api/health", nil).Status(t, http.StatusOK)
	testutil.Do(e, http.MethodGet, "/ready", nil).Status(t, http.StatusOK)
}

func TestHealth_NoDatabase(t *testing.T) {
	e, _ := newHealthServer(t, nil, "test")

	var body HealthResponse
	testutil.Do(e, http.MethodGet, "/health", nil).Status(t, http.StatusServiceUnavailable).JSON(t, &body)
	assert.Equal(t, "unhealthy", body.Status)
	assert.NotEmpty(t, body.Checks["database"].Message)

	testutil.Do(e, http.MethodGet, "/ready", nil).Status(t, http.StatusServiceUnavailable)

	rec := testutil.Do(e, http.MethodGet, "/healthz", nil).Status(t, http.StatusOK)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestDebug_HiddenInProduction(t *testing.T) {
	e, _ := newHealthServer(t, nil, "production")
	testutil.Do(e, http.MethodGet, "/debug", nil).Status(t, http.StatusNotFound)

	e, registry := newHealthServer(t, nil, "local")
	registry.Create()

	var body map[string]any
	testutil.Do(e, http.MethodGet, "/debug", nil).Status(t, http.StatusOK).JSON(t, &body)
	assert.Equal(t, float64(1), body["views_active"])
}

func TestMetrics_Prometheus(t *testing.T) {
	e, _ := newHealthServer(t, nil, "test")

	rec := testutil.Do(e, http.MethodGet, "/metrics", nil).Status(t, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetrics_Funnel(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	e, registry := newHealthServer(t, db, "test")
	registry.Create()

	log := testutil.DiscardLogger()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	lr := leads.NewRepository(db, log)
	for i, st := range []leads.Status{leads.StatusSent, leads.StatusSent, leads.StatusFailed} {
		require.NoError(t, lr.Insert(ctx, &leads.Lead{
			ID: string(rune('a' + i)), Name: "Lead", Phone: "9876543210",
			Email: "lead@example.com", BusinessType: "other", Message: "hello there",
			Plan: leads.DefaultPlan, Status: st, CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, payments.NewRepository(db, log).Insert(ctx, &payments.Payment{
		ID: "p1", Provider: "fake", Plan: "pro", Billing: payments.BillingOnce,
		AmountMinor: 800000, Currency: "INR", Status: payments.StatusSucceeded,
		CreatedAt: now, UpdatedAt: now,
	}))

	var body FunnelMetrics
	testutil.Do(e, http.MethodGet, "/api/metrics/funnel", nil).Status(t, http.StatusOK).JSON(t, &body)
	assert.Equal(t, 1, body.ViewsActive)
	assert.Equal(t, 3, body.Leads.Total)
	assert.Equal(t, 2, body.Leads.ByStatus["sent"])
	assert.Equal(t, map[string]int{"succeeded": 1}, body.Payments.ByStatus)
}
