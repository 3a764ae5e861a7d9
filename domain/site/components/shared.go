package components

import (
	"net/url"
	"sort"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func Logo(brand string) g.Node {
	return A(
		Class("logo"),
		Href("#hero"),
		g.Text(brand),
		Span(Class("logo-dot"), g.Text(".")),
	)
}

// ModalHref is the no-JS link that reloads the page with a dialog open.
func ModalHref(viewID, id string, params map[string]string) string {
	q := url.Values{}
	if viewID != "" {
		q.Set("view", viewID)
	}
	q.Set("modal", id)
	for k, v := range params {
		q.Set(k, v)
	}
	return "/?" + q.Encode()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func IconTile(icon string) g.Node {
	return Span(Class("icon-tile"), g.Attr("aria-hidden", "true"), g.Text(icon))
}
