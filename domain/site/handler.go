package site

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	g "maragu.dev/gomponents"

	"github.com/getcalls/website/domain/chat"
	"github.com/getcalls/website/domain/leads"
	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/site/components"
	"github.com/getcalls/website/domain/site/content"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/logger"
)

// Handler renders the landing page.
type Handler struct {
	registry *views.Registry
	copy     *content.Page
	policies *content.Policies
	payments *payments.Service
	chat     *chat.Service
	site     config.SiteConfig
	log      *slog.Logger
	now      func() time.Time
}

// NewHandler creates a new site handler
func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		registry: p.Registry,
		copy:     p.Copy,
		policies: p.Policies,
		payments: p.Payments,
		chat:     p.Chat,
		site:     p.Config.Site,
		log:      p.Log.With(logger.Scope("site.handler")),
		now:      time.Now,
	}
}

// Index handles GET /
// A new page view is created unless ?view= names a live one. ?modal= opens
// a dialog before rendering, so every dialog works without JavaScript;
// ?close=1 closes the open one.
func (h *Handler) Index(c echo.Context) error {
	v := h.resolveView(c.QueryParam("view"))
	q := c.QueryParams()

	if q.Get("close") != "" {
		v.Modal.Close()
	}
	if id := q.Get("modal"); id != "" {
		if components.KnownModal(id) {
			v.Modal.Open(id, h.modalPayload(id, q))
		} else {
			h.log.Debug("ignoring unknown modal", slog.String("modal", id))
		}
	}

	billing, err := payments.ParseBilling(q.Get("billing"))
	if err != nil {
		billing = payments.BillingOnce
	}

	data, err := h.pageData(v, billing)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, components.Page(data))
}

// Modal handles GET /views/:id/modal
// Re-renders the open dialog. Responds 204 when none is open.
func (h *Handler) Modal(c echo.Context) error {
	v, err := h.registry.Get(c.Param("id"))
	if err != nil {
		return err
	}
	data, err := h.pageData(v, payments.BillingOnce)
	if err != nil {
		return err
	}
	node := components.ActiveModal(data)
	if node == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return render(c, http.StatusOK, node)
}

func (h *Handler) resolveView(id string) *views.View {
	if id != "" {
		if v, err := h.registry.Get(id); err == nil {
			return v
		}
	}
	return h.registry.Create()
}

// modalPayload builds the payload a dialog is opened with from query
// parameters. Prices always come from the catalog.
func (h *Handler) modalPayload(id string, q url.Values) map[string]any {
	switch id {
	case components.ModalContact:
		if plan := strings.TrimSpace(q.Get("plan")); plan != "" {
			return map[string]any{"plan": plan}
		}
		return nil
	case components.ModalPayment:
		billing, err := payments.ParseBilling(q.Get("billing"))
		if err != nil {
			billing = payments.BillingOnce
		}
		plan, ok := h.payments.Catalog().Find(q.Get("plan"))
		if !ok {
			return map[string]any{"plan": q.Get("plan"), "billing": string(billing)}
		}
		return map[string]any{
			"plan":    plan.ID,
			"billing": string(billing),
			"amount":  plan.Price(billing),
		}
	case components.ModalPolicy:
		return map[string]any{"tab": content.NormalizeTab(q.Get("tab"))}
	}
	return nil
}

func (h *Handler) pageData(v *views.View, billing payments.Billing) (*components.PageData, error) {
	snap := v.Snapshot()
	conv, err := h.chat.Conversation(v.ID)
	if err != nil {
		return nil, err
	}
	return &components.PageData{
		Title:              h.site.BrandName + " - Websites that get you calls",
		ViewID:             v.ID,
		Year:               h.now().Year(),
		Site:               h.site,
		Copy:               h.copy,
		Policies:           h.policies,
		Modal:              snap.Modal,
		Toasts:             snap.Toasts,
		Catalog:            h.payments.Catalog(),
		Billing:            billing,
		PaymentsConfigured: h.payments.Configured(),
		PaymentProvider:    h.payments.ProviderName(),
		BusinessTypes:      leads.BusinessTypes,
		Chat: components.ChatState{
			Messages:   conv.Messages(),
			Starters:   chat.Starters,
			Configured: h.chat.Configured(),
		},
	}, nil
}

func render(c echo.Context, status int, node g.Node) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	c.Response().WriteHeader(status)
	return node.Render(c.Response())
}
