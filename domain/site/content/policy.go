package content

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/aymerick/raymond"
	"github.com/yuin/goldmark"

	"github.com/getcalls/website/internal/config"
)

//go:embed policies/*.md
var policyFS embed.FS

const (
	TabPrivacy = "privacy"
	TabTerms   = "terms"
)

// PolicyTab is one tab of the policy dialog.
type PolicyTab struct {
	ID    string
	Label string
}

// PolicyTabs lists the policy tabs in display order.
var PolicyTabs = []PolicyTab{
	{TabPrivacy, "🔒 Privacy Policy"},
	{TabTerms, "📄 Terms of Service"},
}

// Policies holds the rendered HTML of each policy tab.
type Policies struct {
	html map[string]string
}

// NewPolicies renders the policy documents with the site's contact details.
func NewPolicies(site config.SiteConfig) (*Policies, error) {
	md := goldmark.New()
	ctx := map[string]string{
		"brand": site.BrandName,
		"email": site.ContactEmail,
		"phone": site.ContactPhone,
	}

	p := &Policies{html: make(map[string]string, len(PolicyTabs))}
	for _, tab := range PolicyTabs {
		src, err := policyFS.ReadFile("policies/" + tab.ID + ".md")
		if err != nil {
			return nil, fmt.Errorf("read policy %s: %w", tab.ID, err)
		}
		text, err := raymond.Render(string(src), ctx)
		if err != nil {
			return nil, fmt.Errorf("fill policy %s: %w", tab.ID, err)
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(text), &buf); err != nil {
			return nil, fmt.Errorf("render policy %s: %w", tab.ID, err)
		}
		p.html[tab.ID] = buf.String()
	}
	return p, nil
}

// HTML returns the rendered tab, falling back to the privacy policy.
func (p *Policies) HTML(tab string) string {
	if h, ok := p.html[tab]; ok {
		return h
	}
	return p.html[TabPrivacy]
}

// NormalizeTab maps unknown tabs to the privacy policy.
func NormalizeTab(tab string) string {
	if tab == TabTerms {
		return TabTerms
	}
	return TabPrivacy
}
