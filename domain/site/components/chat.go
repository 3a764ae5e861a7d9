package components

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/getcalls/website/domain/chat"
)

func chatBubble(m chat.Message) g.Node {
	class := "bubble " + string(m.Role)
	if m.Pending {
		class += " pending"
	}
	return Div(
		Class(class),
		g.Attr("data-message-id", strconv.Itoa(m.ID)),
		g.Text(m.Content),
	)
}

// ChatWidget renders the floating assistant. It starts collapsed; starters
// show until the visitor has sent a message.
func ChatWidget(p *PageData) g.Node {
	c := p.Chat
	sent := false
	for _, m := range c.Messages {
		if m.Role == chat.RoleUser {
			sent = true
			break
		}
	}

	status := "Online"
	if !c.Configured {
		status = "Offline"
	}

	return Div(
		Class("chat"),
		ID("chat"),
		Button(
			Class("chat-fab"),
			Type("button"),
			g.Attr("aria-label", "Open chat"),
			g.Attr("data-toggle-chat"),
			g.Text("💬"),
		),
		Div(
			Class("chat-panel glass"),
			g.Attr("hidden"),
			Div(
				Class("chat-head"),
				Strong(g.Textf("%s Assistant", p.Site.BrandName)),
				Span(Class("chat-status"), g.Text(status)),
				Button(Type("button"), Class("chat-close"), g.Attr("data-toggle-chat"), g.Attr("aria-label", "Close chat"), g.Text("✕")),
			),
			Div(
				Class("chat-log"),
				g.Attr("data-chat-log"),
				g.Attr("aria-live", "polite"),
				g.Group(g.Map(c.Messages, chatBubble)),
			),
			g.If(!sent, Div(
				Class("chat-starters"),
				g.Attr("data-chat-starters"),
				g.Group(g.Map(c.Starters, func(s string) g.Node {
					return Button(Type("button"), Class("starter"), g.Attr("data-starter", s), g.Text(s))
				})),
			)),
			Form(
				Class("chat-form"),
				g.Attr("data-chat-form"),
				Input(Name("message"), Type("text"), Placeholder("Ask anything…"), g.Attr("autocomplete", "off"), g.Attr("maxlength", "2000")),
				Button(Type("submit"), Class("btn btn-cyan"), g.Text("Send")),
			),
		),
	)
}
