package components

import (
	"fmt"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/getcalls/website/domain/payments"
)

func billingToggle(p *PageData) g.Node {
	opt := func(b payments.Billing, label string) g.Node {
		class := "toggle-opt"
		if p.Billing == b {
			class += " active"
		}
		return A(
			Class(class),
			Href(fmt.Sprintf("/?view=%s&billing=%s#pricing", p.ViewID, b)),
			g.Attr("data-billing-toggle", string(b)),
			g.Text(label),
		)
	}
	return Div(
		Class("billing-toggle"),
		g.Attr("role", "group"),
		opt(payments.BillingOnce, "One-time"),
		opt(payments.BillingMonthly, "Monthly"),
	)
}

func priceBlock(c *payments.Catalog, plan payments.Plan, b payments.Billing, active bool) g.Node {
	suffix := ""
	if b == payments.BillingMonthly {
		suffix = "/mo"
	}
	return Div(
		Class("price"),
		g.Attr("data-billing", string(b)),
		g.If(!active, g.Attr("hidden")),
		Span(Class("price-amount"), g.Text(c.Format(plan.Price(b)))),
		g.If(suffix != "", Span(Class("price-suffix"), g.Text(suffix))),
		P(Class("price-note"), g.Text(plan.Note(b))),
	)
}

func planCard(p *PageData, plan payments.Plan) g.Node {
	class := "glass plan"
	if plan.Popular {
		class += " popular"
	}
	amount := plan.Price(p.Billing)
	return Div(
		Class(class),
		g.Attr("data-plan", plan.ID),
		g.If(plan.Popular, Span(Class("plan-badge"), g.Text("Most Popular"))),
		H3(g.Text(plan.Name)),
		priceBlock(p.Catalog, plan, payments.BillingOnce, p.Billing == payments.BillingOnce),
		priceBlock(p.Catalog, plan, payments.BillingMonthly, p.Billing == payments.BillingMonthly),
		Ul(
			Class("plan-features"),
			g.Group(g.Map(plan.Features, func(f string) g.Node {
				return Li(Span(Class("check"), g.Text("✓")), g.Text(f))
			})),
		),
		Div(
			Class("plan-actions"),
			OpenModalButton(p.ViewID, ModalPayment, "btn btn-cyan", "Pay Now", map[string]string{
				"plan":    plan.ID,
				"billing": string(p.Billing),
				"amount":  fmt.Sprint(amount),
			}),
			OpenModalButton(p.ViewID, ModalContact, "btn btn-ghost", "Get Started", map[string]string{
				"plan": plan.Name,
			}),
		),
	)
}

func PricingSection(p *PageData) g.Node {
	s := p.Copy.Pricing
	return Section(
		ID("pricing"),
		Class("section"),
		SectionHeading(s.Label, s.Title, s.Highlight, s.Sub, false),
		billingToggle(p),
		Div(
			Class("plans"),
			g.Group(g.Map(p.Catalog.Plans, func(plan payments.Plan) g.Node {
				return planCard(p, plan)
			})),
		),
	)
}
