// Package components renders the landing page with gomponents.
package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type PageConfig struct {
	Title       string
	Description string
	ViewID      string
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = "GetCalls - Websites that get you calls"
	}

	if config.Description == "" {
		config.Description = "Conversion-first websites for small businesses with WhatsApp buttons, click-to-call and smart contact forms. Live in 48 hours."
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),

				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),

				Link(Rel("stylesheet"), Href("/static/styles.css")),
			),
			Body(
				g.Attr("data-view-id", config.ViewID),
				g.Group(content),

				Script(Src("/static/js/app.js"), g.Attr("defer")),
			),
		),
	})
}

// SectionHeading renders the label, two-tone title and subtitle shared by
// every section.
func SectionHeading(label, title, highlight, sub string, dim bool) g.Node {
	hlClass := "hi"
	if dim {
		hlClass = "dim"
	}
	return g.Group([]g.Node{
		Span(Class("label"), g.Text(label)),
		H2(
			Class("section-h2"),
			g.Text(title+" "),
			g.If(highlight != "", Span(Class(hlClass), g.Text(highlight))),
		),
		g.If(sub != "", P(Class("section-sub"), g.Text(sub))),
	})
}

// OpenModalButton renders a button that opens dialog id with payload.
// Without JavaScript it falls back to a link that opens the dialog
// server-side.
func OpenModalButton(viewID, id, class, label string, params map[string]string) g.Node {
	attrs := []g.Node{
		Href(ModalHref(viewID, id, params)),
		Class(class),
		g.Attr("data-open-modal", id),
	}
	for _, k := range sortedKeys(params) {
		attrs = append(attrs, g.Attr("data-"+k, params[k]))
	}
	return A(append(attrs, g.Text(label))...)
}
