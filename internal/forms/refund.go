package forms

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
)

// StripeRefundForm selects which of a user's Stripe payments a credit note
// is refunded to. Only payments whose charge still holds at least the
// credit note's value are offered.
type StripeRefundForm struct {
	Payment string `form:"payment" validate:"required"`

	choices []*model.StripePayment
	cleaned *model.StripePayment
	bound   bool
	errors  Errors
}

// NewStripeRefundForm loads userID's Stripe payments and keeps those that
// can absorb a refund of minValue.
func NewStripeRefundForm(ctx context.Context, payments repository.PaymentRepository, userID uuid.UUID, minValue decimal.Decimal) (*StripeRefundForm, error) {
	all, err := payments.ListStripePaymentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load refundable payments: %w", err)
	}

	choices := make([]*model.StripePayment, 0, len(all))
	for _, p := range all {
		if p.Charge.RefundableAmount().GreaterThanOrEqual(minValue) {
			choices = append(choices, p)
		}
	}

	return &StripeRefundForm{
		choices: choices,
		errors:  Errors{},
	}, nil
}

// Bind fills the form from a POSTed request body.
func (f *StripeRefundForm) Bind(c echo.Context) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, f); err != nil {
		return err
	}
	f.Payment = strings.TrimSpace(f.Payment)
	f.bound = true
	return nil
}

func (f *StripeRefundForm) IsBound() bool {
	return f.bound
}

// IsValid checks the selected payment is one of the choices. On success
// Cleaned returns that payment.
func (f *StripeRefundForm) IsValid() bool {
	if !f.bound {
		return false
	}
	f.errors = Errors{}
	f.cleaned = nil

	validateStruct(f, f.errors)
	if f.errors.Any() {
		return false
	}

	if p := f.choice(f.Payment); p != nil {
		f.cleaned = p
		return true
	}
	f.errors.Add("payment", "Select a valid choice. That choice is not one of the available choices.")
	return false
}

func (f *StripeRefundForm) choice(value string) *model.StripePayment {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	for _, p := range f.choices {
		if p.PaymentBaseID == id {
			return p
		}
	}
	return nil
}

// Cleaned is the selected payment after a successful IsValid.
func (f *StripeRefundForm) Cleaned() *model.StripePayment {
	return f.cleaned
}

func (f *StripeRefundForm) Choices() []*model.StripePayment {
	return f.choices
}

func (f *StripeRefundForm) AddError(field, msg string) {
	f.errors.Add(field, msg)
}

func (f *StripeRefundForm) Errors() Errors {
	return f.errors
}

// ChoiceLabel describes a payment in the select box.
func ChoiceLabel(p *model.StripePayment) string {
	return fmt.Sprintf("Payment #%d: %s %s (%s refundable) on %s",
		p.PaymentBaseID,
		p.Payment.Amount.StringFixed(2),
		strings.ToUpper(p.Charge.Currency),
		p.Charge.RefundableAmount().StringFixed(2),
		p.Payment.Time.Format("2006-01-02"))
}

// Fields returns the single payment field.
func (f *StripeRefundForm) Fields() []BoundField {
	var b strings.Builder
	b.WriteString(`<select name="payment" id="id_payment" required>`)
	b.WriteString(`<option value="">---------</option>`)
	for _, p := range f.choices {
		value := strconv.FormatInt(p.PaymentBaseID, 10)
		selected := ""
		if value == f.Payment {
			selected = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`,
			value, selected, template.HTMLEscapeString(ChoiceLabel(p)))
	}
	b.WriteString("</select>")

	return []BoundField{{
		Name:     "payment",
		Label:    label("payment"),
		Required: true,
		Widget:   template.HTML(b.String()),
		Errors:   f.errors.Get("payment"),
	}}
}
