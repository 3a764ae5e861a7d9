package leads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() Form {
	return Form{
		Name:         "John Doe",
		Phone:        "+91 98765 43210",
		Email:        "john@example.com",
		BusinessType: "coach",
		Message:      "I need a website for my gym",
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate(validForm()))
}

func TestValidate_FourFieldErrors(t *testing.T) {
	errs := Validate(Form{
		Name:    "John Doe",
		Phone:   "123",
		Message: "hi",
	})

	assert.Equal(t, FieldErrors{
		"phone":         ErrMsgPhone,
		"email":         ErrMsgEmail,
		"business_type": ErrMsgBusinessType,
		"message":       ErrMsgMessage,
	}, errs)
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Form)
		field string
	}{
		{"name one char", func(f *Form) { f.Name = "J" }, "name"},
		{"name only spaces", func(f *Form) { f.Name = "   " }, "name"},
		{"phone letters", func(f *Form) { f.Phone = "call me" }, "phone"},
		{"phone too short", func(f *Form) { f.Phone = "1234" }, "phone"},
		{"email no domain", func(f *Form) { f.Email = "john@" }, "email"},
		{"email with space", func(f *Form) { f.Email = "jo hn@example.com" }, "email"},
		{"unknown business", func(f *Form) { f.BusinessType = "casino" }, "business_type"},
		{"message padded", func(f *Form) { f.Message = "   short   " }, "message"},
		{"name too long", func(f *Form) { f.Name = strings.Repeat("a", MaxNameLen+1) }, "name"},
		{"email too long", func(f *Form) { f.Email = strings.Repeat("a", MaxEmailLen) + "@example.com" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.edit(&f)
			errs := Validate(f)
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestValidate_AcceptedPhones(t *testing.T) {
	for _, p := range []string{
		"9876543210",
		"+91 98765 43210",
		"+1 (415) 555-0132",
		"020-7946-0958",
		"  98765 43210  ",
	} {
		t.Run(p, func(t *testing.T) {
			f := validForm()
			f.Phone = p
			assert.Empty(t, Validate(f))
		})
	}
}

func TestValidate_TwoCharNameAllowed(t *testing.T) {
	f := validForm()
	f.Name = "Jo"
	assert.Empty(t, Validate(f))
}

func TestValidate_LengthLimitsCountRunes(t *testing.T) {
	f := validForm()
	f.Name = strings.Repeat("é", MaxNameLen)
	assert.Empty(t, Validate(f))
}
