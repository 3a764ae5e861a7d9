package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/getcalls/website/domain/chat"
	"github.com/getcalls/website/domain/leads"
	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/site/content"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/modal"
	"github.com/getcalls/website/pkg/toast"
)

// Dialog ids rendered by this package.
const (
	ModalContact = leads.ContactModal
	ModalPayment = payments.PaymentModal
	ModalPolicy  = "policy"
)

// KnownModal reports whether id is a dialog the page can render.
func KnownModal(id string) bool {
	switch id {
	case ModalContact, ModalPayment, ModalPolicy:
		return true
	}
	return false
}

// PageData is everything the page needs, captured once per request.
type PageData struct {
	Title  string
	ViewID string
	Year   int

	Site     config.SiteConfig
	Copy     *content.Page
	Policies *content.Policies

	Modal  modal.State
	Toasts []toast.Notification

	Catalog            *payments.Catalog
	Billing            payments.Billing
	PaymentsConfigured bool
	PaymentProvider    string

	BusinessTypes []leads.BusinessType
	Chat          ChatState
}

// ChatState is the chat widget at render time.
type ChatState struct {
	Messages   []chat.Message
	Starters   []string
	Configured bool
}

// Page renders the full landing page.
func Page(p *PageData) g.Node {
	return Layout(
		PageConfig{Title: p.Title, ViewID: p.ViewID},
		Topbar(p),
		Main(
			HeroSection(p),
			ProblemSection(p),
			SolutionSection(p),
			FeaturesSection(p),
			PricingSection(p),
			CTASection(p),
		),
		PageFooter(p),
		ContactModal(p),
		PaymentModal(p),
		PolicyModal(p),
		ChatWidget(p),
		ToastStack(p.Toasts),
	)
}

// ActiveModal renders only the open dialog, or nothing.
func ActiveModal(p *PageData) g.Node {
	switch p.Modal.ActiveID {
	case ModalContact:
		return ContactModal(p)
	case ModalPayment:
		return PaymentModal(p)
	case ModalPolicy:
		return PolicyModal(p)
	}
	return nil
}
