package components

import (
	"fmt"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/getcalls/website/domain/leads"
	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/domain/site/content"
)

// payloadString reads key from the open dialog's payload. Numbers arrive as
// float64 from JSON and as integers from the server.
func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}

func payloadBool(payload map[string]any, key string) bool {
	b, _ := payload[key].(bool)
	return b
}

// modalShell renders a dialog that is visible only while id is the active
// dialog of the view.
func modalShell(p *PageData, id, class string, body ...g.Node) g.Node {
	open := p.Modal.ActiveID == id
	closeHref := "/?close=1"
	if p.ViewID != "" {
		closeHref = "/?view=" + p.ViewID + "&close=1"
	}
	return Div(
		Class("modal-overlay"),
		ID("modal-"+id),
		g.Attr("data-modal", id),
		g.Attr("role", "dialog"),
		g.Attr("aria-modal", "true"),
		g.If(!open, g.Attr("hidden")),
		Div(
			Class("modal glass "+class),
			A(Class("modal-close"), Href(closeHref), g.Attr("data-close-modal"), g.Attr("aria-label", "Close"), g.Text("✕")),
			g.Group(body),
		),
	)
}

func field(name, label string, input g.Node) g.Node {
	return Div(
		Class("field"),
		Label(For("lead-"+name), g.Text(label)),
		input,
		P(Class("field-error"), g.Attr("data-error-for", name), g.Attr("hidden")),
	)
}

func ContactModal(p *PageData) g.Node {
	payload := map[string]any{}
	if p.Modal.ActiveID == ModalContact {
		payload = p.Modal.Payload
	}
	plan := payloadString(payload, "plan")

	if payloadBool(payload, "submitted") {
		return modalShell(p, ModalContact, "contact",
			Div(
				Class("modal-success"),
				Span(Class("big-icon"), g.Text("🎉")),
				H4(g.Text("Request sent!")),
				P(g.Textf("We'll call you within 24 hours. A confirmation is on its way to %s.", payloadString(payload, "email"))),
			),
		)
	}

	return modalShell(p, ModalContact, "contact",
		H3(g.Text("Get your website free")),
		P(Class("modal-sub"), g.Text("Tell us about your business. We'll get back within 24 hours.")),
		g.If(plan != "", P(Class("modal-plan"), g.Text("Selected plan: "), Strong(g.Text(plan)))),
		Form(
			Method("post"),
			Action("/api/views/"+p.ViewID+"/leads"),
			g.Attr("data-lead-form"),
			g.Attr("novalidate"),
			field("name", "Your Name", Input(ID("lead-name"), Name("name"), Type("text"), Placeholder("John Smith"), g.Attr("autocomplete", "name"))),
			field("phone", "Phone Number", Input(ID("lead-phone"), Name("phone"), Type("tel"), Placeholder("+1 234 567 8900"), g.Attr("autocomplete", "tel"))),
			field("email", "Email Address", Input(ID("lead-email"), Name("email"), Type("email"), Placeholder("john@email.com"), g.Attr("autocomplete", "email"))),
			field("business_type", "Business Type", Select(
				ID("lead-business_type"),
				Name("business_type"),
				Option(Value(""), g.Text("Select your business type")),
				g.Group(g.Map(p.BusinessTypes, func(bt leads.BusinessType) g.Node {
					return Option(Value(bt.Value), g.Text(bt.Label))
				})),
			)),
			field("message", "What do you need?", Textarea(
				ID("lead-message"),
				Name("message"),
				g.Attr("rows", "4"),
				Placeholder("Tell us about your business and what kind of website you want…"),
			)),
			Button(Type("submit"), Class("btn btn-cyan btn-block"), g.Text("Send Request →")),
		),
	)
}

func PaymentModal(p *PageData) g.Node {
	payload := map[string]any{}
	if p.Modal.ActiveID == ModalPayment {
		payload = p.Modal.Payload
	}

	plan, ok := p.Catalog.Find(payloadString(payload, "plan"))
	billing, err := payments.ParseBilling(payloadString(payload, "billing"))
	if err != nil {
		billing = payments.BillingOnce
	}
	status := payloadString(payload, "status")

	if !ok {
		return modalShell(p, ModalPayment, "payment",
			H3(g.Text("💳 Choose a plan")),
			P(Class("modal-sub"), g.Text("Pick a plan in the pricing section to continue.")),
			A(Href("#pricing"), Class("btn btn-ghost"), g.Attr("data-close-modal"), g.Text("See pricing")),
		)
	}

	amount := p.Catalog.Format(plan.Price(billing))
	summary := Div(
		Class("pay-summary"),
		Div(
			P(Class("pay-plan"), g.Textf("%s Plan", plan.Name)),
			P(Class("pay-billing"), g.Text(billing.Label())),
		),
		P(Class("pay-amount"), g.Text(amount)),
	)

	if status == string(payments.StatusSucceeded) {
		return modalShell(p, ModalPayment, "payment",
			Div(
				Class("modal-success"),
				Span(Class("big-icon"), g.Text("💳✅")),
				H4(g.Text("Payment Successful!")),
				P(g.Text("We'll start your website now. Check your email for next steps.")),
			),
		)
	}

	var note g.Node
	switch status {
	case string(payments.StatusPending):
		note = P(Class("pay-note"), g.Text("Waiting for the payment to complete…"))
	case string(payments.StatusFailed):
		note = P(Class("pay-note error"), g.Text("The last attempt failed. You can try again."))
	case string(payments.StatusCancelled), string(payments.StatusExpired):
		note = P(Class("pay-note"), g.Text("The last attempt was cancelled."))
	}

	return modalShell(p, ModalPayment, "payment",
		summary,
		H3(g.Text(paymentHeading(p.PaymentProvider))),
		P(Class("modal-sub"), g.Text("Pay securely with cards, UPI, wallets, or net banking. We never see your card details.")),
		Div(
			Class("pay-methods"),
			g.Group(g.Map([]string{"💳 Cards", "📱 UPI", "💰 Wallets", "🏦 Net Banking"}, func(m string) g.Node {
				return Span(Class("pay-method"), g.Text(m))
			})),
		),
		g.If(note != nil, note),
		g.If(!p.PaymentsConfigured, P(Class("pay-note"), g.Text(payments.MsgNotConfigured))),
		Button(
			Type("button"),
			Class("btn btn-cyan btn-block"),
			g.Attr("data-checkout"),
			g.Attr("data-provider", p.PaymentProvider),
			g.Textf("Proceed to Payment · %s", amount),
		),
	)
}

func paymentHeading(provider string) string {
	if provider == "" {
		return "💳 Secure Payment"
	}
	return "💳 Secure Payment via " + strings.ToUpper(provider[:1]) + provider[1:]
}

func PolicyModal(p *PageData) g.Node {
	tab := content.TabPrivacy
	if p.Modal.ActiveID == ModalPolicy {
		tab = content.NormalizeTab(payloadString(p.Modal.Payload, "tab"))
	}

	return modalShell(p, ModalPolicy, "policy",
		Div(
			Class("policy-tabs"),
			g.Attr("role", "tablist"),
			g.Group(g.Map(content.PolicyTabs, func(t content.PolicyTab) g.Node {
				class := "policy-tab"
				if t.ID == tab {
					class += " active"
				}
				return A(
					Class(class),
					Href(ModalHref(p.ViewID, ModalPolicy, map[string]string{"tab": t.ID})),
					g.Attr("role", "tab"),
					g.Attr("data-policy-tab", t.ID),
					g.Text(t.Label),
				)
			})),
		),
		g.Group(g.Map(content.PolicyTabs, func(t content.PolicyTab) g.Node {
			return Div(
				Class("policy-body"),
				g.Attr("data-policy", t.ID),
				g.If(t.ID != tab, g.Attr("hidden")),
				g.Raw(p.Policies.HTML(t.ID)),
			)
		})),
	)
}
