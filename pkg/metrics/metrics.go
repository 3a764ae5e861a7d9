// Package metrics declares the Prometheus collectors shared across domains.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Page views
	ViewsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "getcalls_views_active",
		Help: "Page views currently held in memory",
	})

	ViewsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "getcalls_views_evicted_total",
		Help: "Page views removed by the idle sweep",
	})

	ModalOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "getcalls_modal_opens_total",
		Help: "Dialogs opened, by dialog id",
	}, []string{"modal"})

	ToastsShown = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "getcalls_toasts_shown_total",
		Help: "Notifications shown, by kind",
	}, []string{"kind"})

	// Leads
	Leads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "getcalls_leads_total",
		Help: "Lead submissions, by outcome",
	}, []string{"outcome"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "getcalls_emails_total",
		Help: "Email send attempts, by provider and result",
	}, []string{"provider", "result"})

	// Chat
	ChatStreams = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "getcalls_chat_streams_total",
		Help: "Chat completions, by provider and outcome",
	}, []string{"provider", "outcome"})

	ChatStreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "getcalls_chat_stream_duration_seconds",
		Help:    "Time from request to last streamed fragment",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"provider"})

	// Payments
	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "getcalls_payments_total",
		Help: "Checkout events, by provider and status",
	}, []string{"provider", "status"})

	// HTTP
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "getcalls_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by route group",
	}, []string{"route"})
)
