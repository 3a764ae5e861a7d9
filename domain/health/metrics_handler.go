package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/domain/leads"
	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/pkg/logger"
)

// MetricsHandler reports lead and payment counts from the database.
type MetricsHandler struct {
	leads    *leads.Repository
	payments *payments.Repository
	registry *views.Registry
	log      *slog.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(lr *leads.Repository, pr *payments.Repository, registry *views.Registry, log *slog.Logger) *MetricsHandler {
	return &MetricsHandler{
		leads:    lr,
		payments: pr,
		registry: registry,
		log:      log.With(logger.Scope("health.metrics")),
	}
}

// StatusCounts is a per-status tally with its total.
type StatusCounts struct {
	ByStatus map[string]int `json:"by_status"`
	Total    int            `json:"total"`
}

// FunnelMetrics is the response of GET /api/metrics/funnel.
type FunnelMetrics struct {
	ViewsActive int          `json:"views_active"`
	Leads       StatusCounts `json:"leads"`
	Payments    StatusCounts `json:"payments"`
	Timestamp   string       `json:"timestamp"`
}

func tally[S ~string](counts map[S]int) StatusCounts {
	out := StatusCounts{ByStatus: make(map[string]int, len(counts))}
	for status, n := range counts {
		out.ByStatus[string(status)] = n
		out.Total += n
	}
	return out
}

// Funnel handles GET /api/metrics/funnel
func (h *MetricsHandler) Funnel(c echo.Context) error {
	ctx := c.Request().Context()

	leadCounts, err := h.leads.CountByStatus(ctx)
	if err != nil {
		h.log.Error("failed to count leads", logger.Error(err))
		return err
	}
	paymentCounts, err := h.payments.CountByStatus(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, FunnelMetrics{
		ViewsActive: h.registry.Count(),
		Leads:       tally(leadCounts),
		Payments:    tally(paymentCounts),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}
