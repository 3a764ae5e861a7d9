package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/internal/config"
)

func TestLoad(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.Len(t, p.Nav, 4)
	assert.Equal(t, "#pricing", p.Nav[3].Href)
	assert.Len(t, p.Hero.Lines, 3)
	assert.Len(t, p.Hero.Trust, 4)
	assert.Len(t, p.Problem.Cards, 3)
	assert.Equal(t, "The Problem", p.Problem.Label)
	assert.Len(t, p.Solution.Steps, 3)
	assert.Len(t, p.Features.Cards, 6)
	assert.Equal(t, "Nothing extra.", p.Features.Highlight)
	assert.Len(t, p.CTA.Perks, 3)
}

func TestParse_RequiresHeadline(t *testing.T) {
	_, err := Parse([]byte("nav: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("hero: ["))
	assert.Error(t, err)
}

func TestNewPolicies(t *testing.T) {
	p, err := NewPolicies(config.SiteConfig{
		BrandName:    "GetCalls",
		ContactEmail: "hello@getcalls.test",
		ContactPhone: "+91 90000 00000",
	})
	require.NoError(t, err)

	privacy := p.HTML(TabPrivacy)
	assert.Contains(t, privacy, "<h2>Privacy Policy</h2>")
	assert.Contains(t, privacy, "<strong>hello@getcalls.test</strong>")
	assert.Contains(t, privacy, "<li>")
	assert.NotContains(t, privacy, "{{")

	terms := p.HTML(TabTerms)
	assert.Contains(t, terms, "<h2>Terms of Service</h2>")
	assert.Contains(t, terms, "<h3>Governing Law</h3>")
	assert.True(t, strings.Contains(terms, "GetCalls designs and builds"))

	assert.Equal(t, privacy, p.HTML("unknown"))
}

func TestNormalizeTab(t *testing.T) {
	assert.Equal(t, TabTerms, NormalizeTab("terms"))
	assert.Equal(t, TabPrivacy, NormalizeTab("privacy"))
	assert.Equal(t, TabPrivacy, NormalizeTab(""))
	assert.Equal(t, TabPrivacy, NormalizeTab("<script>"))
}
