// Package content holds the landing page copy and the policy documents.
package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

// Link is a navigation entry.
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Card is an icon, title and description tile.
type Card struct {
	Icon  string `yaml:"icon"`
	Title string `yaml:"title"`
	Desc  string `yaml:"desc"`
}

// Trust is a hero badge under the buttons.
type Trust struct {
	Icon string `yaml:"icon"`
	Text string `yaml:"text"`
}

// Section is the shared heading block of a page section.
type Section struct {
	Label     string `yaml:"label"`
	Title     string `yaml:"title"`
	Highlight string `yaml:"highlight"`
	Dim       string `yaml:"dim"`
	Sub       string `yaml:"sub"`
}

// Page is the marketing copy of the landing page.
type Page struct {
	Nav []Link `yaml:"nav"`

	Hero struct {
		Badge     string   `yaml:"badge"`
		Lines     []string `yaml:"lines"`
		Sub       string   `yaml:"sub"`
		Primary   string   `yaml:"primary"`
		Secondary string   `yaml:"secondary"`
		Trust     []Trust  `yaml:"trust"`
	} `yaml:"hero"`

	Problem struct {
		Section `yaml:",inline"`
		Cards   []Card `yaml:"cards"`
	} `yaml:"problem"`

	Solution struct {
		Section  `yaml:",inline"`
		Activity []Card `yaml:"activity"`
		Steps    []Card `yaml:"steps"`
	} `yaml:"solution"`

	Features struct {
		Section `yaml:",inline"`
		Cards   []Card `yaml:"cards"`
	} `yaml:"features"`

	Pricing Section `yaml:"pricing"`

	CTA struct {
		Section `yaml:",inline"`
		Button  string   `yaml:"button"`
		Perks   []string `yaml:"perks"`
	} `yaml:"cta"`

	Footer struct {
		Tagline string `yaml:"tagline"`
	} `yaml:"footer"`
}

// Load decodes the copy compiled into the binary.
func Load() (*Page, error) {
	return Parse(contentYAML)
}

// Parse decodes YAML copy.
func Parse(data []byte) (*Page, error) {
	var c Page
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse site content: %w", err)
	}
	if len(c.Hero.Lines) == 0 {
		return nil, fmt.Errorf("parse site content: hero has no headline")
	}
	return &c, nil
}
