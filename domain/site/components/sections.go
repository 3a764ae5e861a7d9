package components

import (
	"fmt"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/getcalls/website/domain/site/content"
)

func Topbar(p *PageData) g.Node {
	return Nav(
		Class("topbar"),
		ID("topbar"),
		Logo(p.Site.BrandName),
		Ul(
			Class("topbar-links"),
			g.Group(g.Map(p.Copy.Nav, func(l content.Link) g.Node {
				return Li(A(Href(l.Href), g.Text(l.Label)))
			})),
			Li(OpenModalButton(p.ViewID, ModalContact, "btn btn-cyan", "Start Free →", nil)),
		),
		Button(
			Class("topbar-menu"),
			Type("button"),
			g.Attr("aria-label", "Menu"),
			g.Attr("data-toggle-menu"),
			g.Text("☰"),
		),
	)
}

func HeroSection(p *PageData) g.Node {
	hero := p.Copy.Hero
	lines := make([]g.Node, 0, len(hero.Lines))
	for i, line := range hero.Lines {
		class := "hero-line"
		if i == 1 {
			class += " accent"
		}
		lines = append(lines, Span(Class(class), g.Text(line)))
	}

	return Section(
		ID("hero"),
		Class("hero"),
		Div(Class("badge"), g.Text(hero.Badge)),
		H1(Class("hero-title"), g.Group(lines)),
		P(Class("hero-sub"), g.Text(hero.Sub)),
		Div(
			Class("hero-actions"),
			OpenModalButton(p.ViewID, ModalContact, "btn btn-cyan btn-lg", hero.Primary, nil),
			A(Href("#solution"), Class("btn btn-ghost"), g.Text(hero.Secondary)),
		),
		Div(
			Class("trust-strip"),
			g.Group(g.Map(hero.Trust, func(t content.Trust) g.Node {
				return Div(
					Class("glass trust"),
					Div(Class("trust-icon"), g.Text(t.Icon)),
					P(g.Text(t.Text)),
				)
			})),
		),
	)
}

func cardGrid(class string, cards []content.Card) g.Node {
	return Div(
		Class("card-grid "+class),
		g.Group(g.Map(cards, func(c content.Card) g.Node {
			return Div(
				Class("glass card"),
				IconTile(c.Icon),
				H4(g.Text(c.Title)),
				P(g.Text(c.Desc)),
			)
		})),
	)
}

func ProblemSection(p *PageData) g.Node {
	s := p.Copy.Problem
	return Section(
		ID("problem"),
		Class("section"),
		SectionHeading(s.Label, s.Title, s.Dim, s.Sub, true),
		cardGrid("problem-cards", s.Cards),
	)
}

func SolutionSection(p *PageData) g.Node {
	s := p.Copy.Solution
	steps := make([]g.Node, 0, len(s.Steps))
	for i, step := range s.Steps {
		steps = append(steps, Li(
			Class("step"),
			Span(Class("step-num"), g.Text(fmt.Sprint(i+1))),
			Div(H4(g.Text(step.Title)), P(g.Text(step.Desc))),
		))
	}

	return Section(
		ID("solution"),
		Class("section"),
		SectionHeading(s.Label, s.Title, s.Highlight, s.Sub, false),
		Div(
			Class("solution-row"),
			Div(
				Class("glass mockup"),
				Div(Class("mockup-bar"), Span(), Span(), Span()),
				Div(
					Class("mockup-body"),
					g.Group(g.Map(s.Activity, func(a content.Card) g.Node {
						return Div(
							Class("activity"),
							IconTile(a.Icon),
							Div(Strong(g.Text(a.Title)), P(g.Text(a.Desc))),
						)
					})),
				),
			),
			Ol(Class("steps"), g.Group(steps)),
		),
	)
}

func FeaturesSection(p *PageData) g.Node {
	s := p.Copy.Features
	return Section(
		ID("features"),
		Class("section"),
		SectionHeading(s.Label, s.Title, s.Highlight, s.Sub, false),
		cardGrid("feature-cards", s.Cards),
	)
}

func CTASection(p *PageData) g.Node {
	s := p.Copy.CTA
	return Section(
		ID("cta"),
		Class("section cta"),
		SectionHeading(s.Label, s.Title, s.Highlight, s.Sub, false),
		Div(Class("cta-actions"), OpenModalButton(p.ViewID, ModalContact, "btn btn-cyan btn-lg", s.Button, nil)),
		Ul(
			Class("perks"),
			g.Group(g.Map(s.Perks, func(perk string) g.Node {
				return Li(Span(Class("check"), g.Text("✓")), g.Text(perk))
			})),
		),
	)
}

func PageFooter(p *PageData) g.Node {
	site := p.Site
	return Footer(
		Class("footer"),
		Div(
			Class("footer-grid"),
			Div(
				Logo(site.BrandName),
				P(Class("footer-tagline"), g.Text(p.Copy.Footer.Tagline)),
			),
			Div(
				P(Class("footer-head"), g.Text("Contact")),
				P(A(Href("mailto:"+site.ContactEmail), g.Text("📧 "+site.ContactEmail))),
				P(A(Href("tel:"+telDigits(site.ContactPhone)), g.Text("📞 "+site.ContactPhone))),
				g.If(site.WhatsApp != "",
					P(A(Href("https://wa.me/"+site.WhatsApp), g.Attr("target", "_blank"), g.Attr("rel", "noopener"), g.Text("💬 WhatsApp"))),
				),
			),
			Div(
				P(Class("footer-head"), g.Text("Legal")),
				g.Group(g.Map(content.PolicyTabs, func(tab content.PolicyTab) g.Node {
					return P(OpenModalButton(p.ViewID, ModalPolicy, "footer-link", trimIcon(tab.Label), map[string]string{"tab": tab.ID}))
				})),
			),
		),
		P(Class("footer-copy"), g.Textf("© %d %s. All rights reserved.", p.Year, site.BrandName)),
	)
}

func telDigits(phone string) string {
	out := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r == '+' || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
	}
	return string(out)
}

// trimIcon drops the leading emoji of a tab label.
func trimIcon(label string) string {
	for i, r := range label {
		if r == ' ' {
			return label[i+1:]
		}
	}
	return label
}
