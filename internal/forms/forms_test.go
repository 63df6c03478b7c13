package forms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
)

func postContext(values url.Values) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return e.NewContext(req, httptest.NewRecorder())
}

func validCardValues() url.Values {
	return url.Values{
		"stripe_token":    {"tok_123"},
		"name":            {"Ada Lovelace"},
		"address_line1":   {"1 Analytical Way"},
		"address_city":    {"Hobart"},
		"address_state":   {"TAS"},
		"address_zip":     {"7000"},
		"address_country": {"AU"},
	}
}

func TestCreditCardForm_Valid(t *testing.T) {
	values := validCardValues()
	values.Set("number", "4242424242424242")
	values.Set("cvc", "123")

	form := NewCreditCardForm("/pubkey/")
	require.NoError(t, form.Bind(postContext(values)))

	assert.True(t, form.IsBound())
	assert.True(t, form.IsValid(), "errors: %v", form.Errors())
	assert.Equal(t, "tok_123", form.StripeToken)
	assert.Equal(t, "AU", form.AddressCountry)
	// Card data is never kept even if posted.
	assert.Empty(t, form.Number)
	assert.Empty(t, form.CVC)
}

func TestCreditCardForm_UnboundIsInvalid(t *testing.T) {
	form := NewCreditCardForm("/pubkey/")
	assert.False(t, form.IsValid())
	assert.False(t, form.Errors().Any())
}

func TestCreditCardForm_RequiredFields(t *testing.T) {
	values := validCardValues()
	values.Del("stripe_token")
	values.Del("name")

	form := NewCreditCardForm("/pubkey/")
	require.NoError(t, form.Bind(postContext(values)))

	assert.False(t, form.IsValid())
	assert.Equal(t, []string{"This field is required."}, form.Errors().Get("stripe_token"))
	assert.Equal(t, []string{"This field is required."}, form.Errors().Get("name"))
	assert.Empty(t, form.Errors().Get("address_line2"))
}

func TestCreditCardForm_MaxLength(t *testing.T) {
	values := validCardValues()
	values.Set("address_zip", strings.Repeat("9", 256))

	form := NewCreditCardForm("/pubkey/")
	require.NoError(t, form.Bind(postContext(values)))

	assert.False(t, form.IsValid())
	assert.Equal(t,
		[]string{"Ensure this value has at most 255 characters (it has 256)."},
		form.Errors().Get("address_zip"))
}

func TestCreditCardForm_InvalidCountry(t *testing.T) {
	values := validCardValues()
	values.Set("address_country", "XX")

	form := NewCreditCardForm("/pubkey/")
	require.NoError(t, form.Bind(postContext(values)))

	assert.False(t, form.IsValid())
	assert.Equal(t,
		[]string{"Select a valid choice. XX is not one of the available choices."},
		form.Errors().Get("address_country"))
}

func TestCreditCardForm_AddError(t *testing.T) {
	form := NewCreditCardForm("/pubkey/")
	form.AddError("", "Your card was declined.")
	form.AddError("name", "Bad name")

	assert.Equal(t, []string{"Your card was declined."}, form.Errors().NonField())
	assert.Equal(t, []string{"Bad name"}, form.Errors().Get("name"))
}

func TestCreditCardForm_Render(t *testing.T) {
	values := validCardValues()
	values.Set("name", `Ada "<b>"`)

	form := NewCreditCardForm("/pubkey/")
	require.NoError(t, form.Bind(postContext(values)))

	widgets := map[string]string{}
	for _, f := range form.Fields() {
		widgets[f.Name] = string(f.Widget)
	}

	assert.Contains(t, widgets["number"], `name=""`)
	assert.Contains(t, widgets["number"], `data-stripe="number"`)
	assert.NotContains(t, widgets["number"], "value=")
	assert.Contains(t, widgets["cvc"], `maxlength="4"`)

	assert.Equal(t, "<!-- no widget: stripe_token -->", widgets["stripe_token"])

	assert.Contains(t, widgets["name"], `name="name"`)
	assert.Contains(t, widgets["name"], `data-stripe="name"`)
	assert.Contains(t, widgets["name"], `value="Ada &#34;&lt;b&gt;&#34;"`)

	assert.Contains(t, widgets["address_country"], `<select name="address_country" id="id_address_country" data-stripe="address_country" required>`)
	assert.Contains(t, widgets["address_country"], `<option value="AU" selected>Australia</option>`)

	assert.Equal(t, []string{"https://js.stripe.com/v2/", "/pubkey/"}, form.Media())
}

func TestCreditCardForm_CountryMatchesChoices(t *testing.T) {
	for _, c := range Countries() {
		values := validCardValues()
		values.Set("address_country", c.Code)

		form := NewCreditCardForm("/pubkey/")
		require.NoError(t, form.Bind(postContext(values)))
		assert.True(t, form.IsValid(), "rendered choice %s should validate", c.Code)
	}

	// Kosovo has a user-assigned code that the select does not offer.
	values := validCardValues()
	values.Set("address_country", "XK")

	form := NewCreditCardForm("/pubkey/")
	require.NoError(t, form.Bind(postContext(values)))

	assert.False(t, form.IsValid())
	assert.Equal(t,
		[]string{"Select a valid choice. XK is not one of the available choices."},
		form.Errors().Get("address_country"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Address line1", label("address_line1"))
	assert.Equal(t, "Cvc", label("cvc"))
}

func TestCountries(t *testing.T) {
	all := Countries()
	assert.Len(t, all, 249)
	assert.Equal(t, "Afghanistan", all[0].Name)
	assert.True(t, IsCountry("NZ"))
	assert.False(t, IsCountry("XX"))
}

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *model.PaymentBase) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepository) CreateStripePayment(ctx context.Context, payment *model.StripePayment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepository) GetStripePayment(ctx context.Context, id int64) (*model.StripePayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StripePayment), args.Error(1)
}

func (m *mockPaymentRepository) ListStripePaymentsByUser(ctx context.Context, userID uuid.UUID) ([]*model.StripePayment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.StripePayment), args.Error(1)
}

func (m *mockPaymentRepository) ListRecentStripePaymentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.StripePayment, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.StripePayment), args.Error(1)
}

func stripePayment(id int64, amount, refunded string) *model.StripePayment {
	return &model.StripePayment{
		PaymentBaseID: id,
		Payment: model.PaymentBase{
			ID:     id,
			Amount: decimal.RequireFromString(amount),
			Time:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		Charge: model.StripeCharge{
			StripeID:       "ch_" + amount,
			Currency:       "aud",
			Amount:         decimal.RequireFromString(amount),
			AmountRefunded: decimal.RequireFromString(refunded),
		},
	}
}

func TestStripeRefundForm(t *testing.T) {
	userID := uuid.New()
	repo := new(mockPaymentRepository)
	repo.On("ListStripePaymentsByUser", mock.Anything, userID).Return([]*model.StripePayment{
		stripePayment(1, "100.00", "0"),
		stripePayment(2, "100.00", "70.00"),
		stripePayment(3, "50.00", "0"),
	}, nil)

	form, err := NewStripeRefundForm(context.Background(), repo, userID, decimal.RequireFromString("50.00"))
	require.NoError(t, err)

	var ids []int64
	for _, p := range form.Choices() {
		ids = append(ids, p.PaymentBaseID)
	}
	assert.Equal(t, []int64{1, 3}, ids)

	t.Run("valid choice", func(t *testing.T) {
		require.NoError(t, form.Bind(postContext(url.Values{"payment": {"3"}})))
		assert.True(t, form.IsValid())
		assert.Equal(t, int64(3), form.Cleaned().PaymentBaseID)
		assert.Contains(t, string(form.Fields()[0].Widget), `<option value="3" selected>`)
	})

	t.Run("payment without enough left", func(t *testing.T) {
		require.NoError(t, form.Bind(postContext(url.Values{"payment": {"2"}})))
		assert.False(t, form.IsValid())
		assert.Nil(t, form.Cleaned())
		require.Len(t, form.Errors().Get("payment"), 1)
		assert.True(t, strings.HasPrefix(form.Errors().Get("payment")[0], "Select a valid choice."))
	})

	t.Run("missing payment", func(t *testing.T) {
		form.Payment = ""
		require.NoError(t, form.Bind(postContext(url.Values{})))
		assert.False(t, form.IsValid())
		assert.Equal(t, []string{"This field is required."}, form.Errors().Get("payment"))
	})

	repo.AssertExpectations(t)
}

func TestChoiceLabel(t *testing.T) {
	p := stripePayment(9, "120.00", "20.00")
	assert.Equal(t, "Payment #9: 120.00 AUD (100.00 refundable) on 2026-01-02", ChoiceLabel(p))
}
