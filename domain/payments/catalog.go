package payments

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var plansYAML []byte

// Billing is how often a plan is charged.
type Billing string

const (
	BillingOnce    Billing = "once"
	BillingMonthly Billing = "monthly"
)

var (
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrUnknownBilling = errors.New("unknown billing")
)

// ParseBilling accepts "once", "onetime", "one-time" and "monthly". Empty
// means once.
func ParseBilling(s string) (Billing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "once", "onetime", "one-time":
		return BillingOnce, nil
	case "monthly", "month":
		return BillingMonthly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBilling, s)
}

// Label is the human form used in descriptions.
func (b Billing) Label() string {
	if b == BillingMonthly {
		return "Monthly"
	}
	return "One-time"
}

// Plan is one pricing tier. Prices are in major currency units.
type Plan struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	OneTime     int64    `yaml:"onetime" json:"onetime"`
	Monthly     int64    `yaml:"monthly" json:"monthly"`
	NoteOnce    string   `yaml:"note_once" json:"noteOnce"`
	NoteMonthly string   `yaml:"note_monthly" json:"noteMonthly"`
	Popular     bool     `yaml:"popular" json:"popular"`
	Features    []string `yaml:"features" json:"features"`
}

// Price returns the price for billing in major units.
func (p Plan) Price(b Billing) int64 {
	if b == BillingMonthly {
		return p.Monthly
	}
	return p.OneTime
}

// Note returns the tagline shown under the price.
func (p Plan) Note(b Billing) string {
	if b == BillingMonthly {
		return p.NoteMonthly
	}
	return p.NoteOnce
}

// Catalog is the list of plans on sale.
type Catalog struct {
	Currency string `yaml:"currency" json:"currency"`
	Plans    []Plan `yaml:"plans" json:"plans"`
}

// NewCatalog loads the plans compiled into the binary.
func NewCatalog() (*Catalog, error) {
	return ParseCatalog(plansYAML)
}

// ParseCatalog decodes and checks a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	if c.Currency == "" {
		c.Currency = "INR"
	}
	seen := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("parse plans: plan without id or name")
		}
		if p.OneTime <= 0 || p.Monthly <= 0 {
			return nil, fmt.Errorf("parse plans: %s has a non-positive price", p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse plans: duplicate plan %s", p.ID)
		}
		seen[p.ID] = true
	}
	return &c, nil
}

// Find looks a plan up by id or display name, ignoring case.
func (c *Catalog) Find(name string) (Plan, bool) {
	name = strings.TrimSpace(name)
	for _, p := range c.Plans {
		if strings.EqualFold(p.ID, name) || strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

// Amount returns the price of plan in major units.
func (c *Catalog) Amount(plan string, billing Billing) (int64, error) {
	p, ok := c.Find(plan)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	return p.Price(billing), nil
}

// AmountMinor returns the price of plan in minor units (paise).
func (c *Catalog) AmountMinor(plan string, billing Billing) (int64, error) {
	amount, err := c.Amount(plan, billing)
	if err != nil {
		return 0, err
	}
	return amount * 100, nil
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Format renders a major-unit amount with the currency symbol and thousands
// separators, e.g. ₹10,000.
func (c *Catalog) Format(amount int64) string {
	sym, ok := currencySymbols[strings.ToUpper(c.Currency)]
	if !ok {
		sym = strings.ToUpper(c.Currency) + " "
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + sym + b.String()
}
