package leads

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	phoneRe = regexp.MustCompile(`^(\+?\d{1,3}[\s-]?)?(\(?\d{1,4}\)?[\s-]?){1,3}\d{2,4}[\s-]?\d{2,6}$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Field error messages shown under each input.
const (
	ErrMsgName         = "Enter your full name"
	ErrMsgPhone        = "Enter a valid phone number"
	ErrMsgEmail        = "Enter a valid email"
	ErrMsgBusinessType = "Pick a business type"
	ErrMsgMessage      = "Tell us a bit more (min 8 chars)"
)

// Column widths of the leads table.
const (
	MaxNameLen  = 200
	MaxEmailLen = 320
	MaxPlanLen  = 80
)

// BusinessType is one option of the business type select.
type BusinessType struct {
	Value string
	Label string
}

// BusinessTypes in display order.
var BusinessTypes = []BusinessType{
	{"coach", "Coach / Trainer"},
	{"freelancer", "Freelancer"},
	{"shop", "Shop / Retail"},
	{"service", "Service Business"},
	{"food", "Food / Restaurant"},
	{"real-estate", "Real Estate"},
	{"agency", "Agency"},
	{"saas", "SaaS / Tech"},
	{"other", "Other"},
}

func knownBusinessType(v string) bool {
	for _, bt := range BusinessTypes {
		if bt.Value == v {
			return true
		}
	}
	return false
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:         strings.TrimSpace(f.Name),
		Phone:        strings.TrimSpace(f.Phone),
		Email:        strings.TrimSpace(f.Email),
		BusinessType: strings.TrimSpace(f.BusinessType),
		Message:      strings.TrimSpace(f.Message),
	}
}

// Validate checks every field and returns one message per invalid field.
// An empty result means the form may be sent.
func Validate(f Form) FieldErrors {
	f = f.Normalize()
	errs := FieldErrors{}

	if n := utf8.RuneCountInString(f.Name); n < 2 || n > MaxNameLen {
		errs["name"] = ErrMsgName
	}
	if f.Phone == "" || !phoneRe.MatchString(f.Phone) {
		errs["phone"] = ErrMsgPhone
	}
	if f.Email == "" || utf8.RuneCountInString(f.Email) > MaxEmailLen || !emailRe.MatchString(f.Email) {
		errs["email"] = ErrMsgEmail
	}
	if !knownBusinessType(f.BusinessType) {
		errs["business_type"] = ErrMsgBusinessType
	}
	if utf8.RuneCountInString(f.Message) < 8 {
		errs["message"] = ErrMsgMessage
	}
	return errs
}
