package chat

import (
	"fmt"
	"strings"

	"github.com/getcalls/website/domain/payments"
	"github.com/getcalls/website/internal/config"
)

// Starters are the suggested first questions shown before the visitor types.
var Starters = []string{
	"💰 How much does it cost?",
	"⏱️ How long does it take?",
	"📞 What features do I get?",
	"🤝 How do I get started?",
}

// Copy holds the fixed assistant texts for a site.
type Copy struct {
	System      string
	Greeting    string
	Unavailable string
	Failure     string
}

// NewCopy builds the system prompt and canned replies from the site settings
// and the live plan catalog, so quoted prices match checkout.
func NewCopy(site config.SiteConfig, catalog *payments.Catalog) Copy {
	return Copy{
		System:   systemPrompt(site, catalog),
		Greeting: fmt.Sprintf("Hey 👋 I'm the %s assistant. How can I help you today?", site.BrandName),
		Unavailable: fmt.Sprintf(
			"I'm sorry, the AI assistant isn't configured yet. Please contact us directly at %s or call %s 😊",
			site.ContactEmail, site.ContactPhone),
		Failure: "Oops, something went wrong. Please try again or contact us directly!",
	}
}

func systemPrompt(site config.SiteConfig, catalog *payments.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the friendly AI assistant for %s, a startup that builds conversion-first websites for small businesses worldwide.\n", site.BrandName)
	b.WriteString("Services: custom websites with WhatsApp buttons, click-to-call, smart contact forms, SEO, mobile-first design. Live in 48 hours.\n")

	if catalog != nil && len(catalog.Plans) > 0 {
		prices := make([]string, 0, len(catalog.Plans))
		for _, p := range catalog.Plans {
			prices = append(prices, fmt.Sprintf("%s %s", p.Name, catalog.Format(p.OneTime)))
		}
		fmt.Fprintf(&b, "Pricing: %s (one-time). Monthly plans also available.\n", strings.Join(prices, " | "))
	}

	fmt.Fprintf(&b, "Founder: %s | Phone: %s | Email: %s\n", site.OwnerName, site.ContactPhone, site.ContactEmail)
	b.WriteString(`Be concise, warm, and helpful. If the user wants to get started, tell them to click "Get Your Website Free" or "Pay Now" on the page. Keep answers under 3 short paragraphs.`)
	return b.String()
}
