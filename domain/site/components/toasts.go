package components

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/getcalls/website/pkg/toast"
)

func ToastStack(toasts []toast.Notification) g.Node {
	return Div(
		Class("toasts"),
		ID("toasts"),
		g.Attr("aria-live", "polite"),
		g.Group(g.Map(toasts, Toast)),
	)
}

func Toast(n toast.Notification) g.Node {
	return Div(
		Class("toast "+string(n.Kind)),
		g.Attr("data-toast-id", strconv.FormatInt(n.ID, 10)),
		g.Attr("data-ttl", strconv.FormatInt(n.TTLMillis, 10)),
		g.Attr("role", "status"),
		Span(Class("toast-icon"), g.Text(n.Kind.Icon())),
		Span(Class("toast-msg"), g.Text(n.Message)),
		Button(Type("button"), Class("toast-close"), g.Attr("data-dismiss-toast", strconv.FormatInt(n.ID, 10)), g.Attr("aria-label", "Dismiss"), g.Text("✕")),
	)
}
