// Package forms binds, validates and renders the card payment and refund
// forms.
package forms

import (
	"github.com/labstack/echo/v4"
)

// StripeJSURL is the Stripe.js v2 library the card form depends on.
const StripeJSURL = "https://js.stripe.com/v2/"

// CreditCardForm collects a Stripe.js token and the card holder's billing
// details. The card number, expiry and CVC fields are only rendered for
// Stripe.js; their values never reach the server.
type CreditCardForm struct {
	Number   string `form:"number" validate:"max=255"`
	ExpMonth string `form:"exp_month" validate:"max=2"`
	ExpYear  string `form:"exp_year" validate:"max=4"`
	CVC      string `form:"cvc" validate:"max=4"`

	StripeToken string `form:"stripe_token" validate:"required,max=255"`

	Name           string `form:"name" validate:"required,max=255"`
	AddressLine1   string `form:"address_line1" validate:"required,max=255"`
	AddressLine2   string `form:"address_line2" validate:"max=255"`
	AddressCity    string `form:"address_city" validate:"required,max=255"`
	AddressState   string `form:"address_state" validate:"required,max=255"`
	AddressZip     string `form:"address_zip" validate:"required,max=255"`
	AddressCountry string `form:"address_country" validate:"required,country"`

	pubkeyURL string
	bound     bool
	errors    Errors
}

type cardField struct {
	name     string
	required bool
	maxLen   string
	widget   widget
	value    func(f *CreditCardForm) string
}

var cardFields = []cardField{
	{"number", false, "255", striped(textInput, true), func(f *CreditCardForm) string { return "" }},
	{"exp_month", false, "2", striped(textInput, true), func(f *CreditCardForm) string { return "" }},
	{"exp_year", false, "4", striped(textInput, true), func(f *CreditCardForm) string { return "" }},
	{"cvc", false, "4", striped(textInput, true), func(f *CreditCardForm) string { return "" }},
	{"stripe_token", true, "", noWidget, func(f *CreditCardForm) string { return f.StripeToken }},
	{"name", true, "255", striped(textInput, false), func(f *CreditCardForm) string { return f.Name }},
	{"address_line1", true, "255", striped(textInput, false), func(f *CreditCardForm) string { return f.AddressLine1 }},
	{"address_line2", false, "255", striped(textInput, false), func(f *CreditCardForm) string { return f.AddressLine2 }},
	{"address_city", true, "255", striped(textInput, false), func(f *CreditCardForm) string { return f.AddressCity }},
	{"address_state", true, "255", striped(textInput, false), func(f *CreditCardForm) string { return f.AddressState }},
	{"address_zip", true, "255", striped(textInput, false), func(f *CreditCardForm) string { return f.AddressZip }},
	{"address_country", true, "", striped(countrySelect, false), func(f *CreditCardForm) string { return f.AddressCountry }},
}

// NewCreditCardForm returns an unbound form. pubkeyURL is the script that
// sets the publishable key.
func NewCreditCardForm(pubkeyURL string) *CreditCardForm {
	return &CreditCardForm{
		pubkeyURL: pubkeyURL,
		errors:    Errors{},
	}
}

// Bind fills the form from a POSTed request body.
func (f *CreditCardForm) Bind(c echo.Context) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, f); err != nil {
		return err
	}
	f.scrubSecure()
	f.bound = true
	return nil
}

// scrubSecure drops card data a misbehaving client may have posted.
func (f *CreditCardForm) scrubSecure() {
	f.Number = ""
	f.ExpMonth = ""
	f.ExpYear = ""
	f.CVC = ""
}

// IsBound reports whether Bind has been called.
func (f *CreditCardForm) IsBound() bool {
	return f.bound
}

// IsValid validates a bound form. An unbound form is never valid.
func (f *CreditCardForm) IsValid() bool {
	if !f.bound {
		return false
	}
	f.errors = Errors{}
	validateStruct(f, f.errors)
	return !f.errors.Any()
}

// AddError attaches msg to field, or to the whole form when field is empty.
func (f *CreditCardForm) AddError(field, msg string) {
	f.errors.Add(field, msg)
}

func (f *CreditCardForm) Errors() Errors {
	return f.errors
}

// Media lists the scripts the form needs, in load order.
func (f *CreditCardForm) Media() []string {
	return []string{StripeJSURL, f.pubkeyURL}
}

// Fields returns the form's fields in display order.
func (f *CreditCardForm) Fields() []BoundField {
	fields := make([]BoundField, 0, len(cardFields))
	for _, cf := range cardFields {
		attrs := map[string]string{"id": "id_" + cf.name}
		if cf.maxLen != "" {
			attrs["maxlength"] = cf.maxLen
		}
		if cf.required {
			attrs["required"] = ""
		}
		fields = append(fields, BoundField{
			Name:     cf.name,
			Label:    label(cf.name),
			Required: cf.required,
			Widget:   cf.widget(cf.name, cf.value(f), attrs),
			Errors:   f.errors.Get(cf.name),
		})
	}
	return fields
}
