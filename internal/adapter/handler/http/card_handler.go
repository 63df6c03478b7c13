package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/registripe/internal/domain/errors"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	"github.com/wekeepgrowing/registripe/internal/forms"
	"github.com/wekeepgrowing/registripe/internal/middleware/auth"
	"github.com/wekeepgrowing/registripe/internal/usecase"
	"go.uber.org/zap"
)

const msgInvoicePaid = "This invoice was successfully paid."

type CardHandler struct {
	invoices   *usecase.InvoiceController
	payments   *usecase.CardPaymentService
	pubkeyURL  string
	invoiceURL string
	logger     *zap.Logger
}

func NewCardHandler(
	invoices *usecase.InvoiceController,
	payments *usecase.CardPaymentService,
	pubkeyURL string,
	invoiceURL string,
	logger *zap.Logger,
) *CardHandler {
	return &CardHandler{
		invoices:   invoices,
		payments:   payments,
		pubkeyURL:  pubkeyURL,
		invoiceURL: invoiceURL,
		logger:     logger,
	}
}

type cardPage struct {
	Invoice    *model.Invoice
	BalanceDue string
	Form       *forms.CreditCardForm
	Messages   []string
	CSRFToken  string
}

// Card shows the payment form for an invoice and charges the card when
// the form is posted. The invoice is visible to its owner, to staff, and
// to anyone holding the attendee's access code.
func (h *CardHandler) Card(c echo.Context) error {
	ctx := c.Request().Context()

	invoiceID, err := strconv.ParseInt(c.Param("invoice_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	invoice, err := h.invoices.ForID(ctx, invoiceID)
	if errors.Is(err, domainErrors.ErrInvoiceNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	accessCode := c.Param("access_code")
	allowed, err := h.invoices.CanView(ctx, invoice, auth.GetUserFromContext(c), accessCode)
	if err != nil {
		return err
	}
	if !allowed {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	toInvoice := h.invoiceLocation(invoice.ID, accessCode)

	balance, err := h.invoices.BalanceDue(ctx, invoice)
	if err != nil {
		return err
	}
	if !balance.IsPositive() {
		return c.Redirect(http.StatusFound, toInvoice)
	}

	form := forms.NewCreditCardForm(h.pubkeyURL)
	if c.Request().Method == http.MethodPost {
		if err := form.Bind(c); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed form data")
		}

		if form.IsValid() {
			_, err := h.payments.ProcessCard(ctx, form, invoice)
			if err == nil {
				AddFlash(c, h.logger, msgInvoicePaid)
				return c.Redirect(http.StatusFound, toInvoice)
			}
			if !addNonFieldError(form, err) {
				return err
			}
		}
	}

	return c.Render(http.StatusOK, "card.html", cardPage{
		Invoice:    invoice,
		BalanceDue: balance.StringFixed(2),
		Form:       form,
		Messages:   Flashes(c),
		CSRFToken:  CSRFToken(c),
	})
}

func (h *CardHandler) invoiceLocation(invoiceID int64, accessCode string) string {
	location := fmt.Sprintf(h.invoiceURL, invoiceID)
	if accessCode != "" {
		location += "/" + accessCode
	}
	return location
}

type errorAdder interface {
	AddError(field, msg string)
}

// addNonFieldError shows provider and validation failures on the form. It
// reports false for anything else.
func addNonFieldError(form errorAdder, err error) bool {
	if pe, ok := provider.AsProviderError(err); ok {
		form.AddError("", pe.Message)
		return true
	}
	if ve, ok := domainErrors.AsValidationError(err); ok {
		form.AddError("", ve.Message)
		return true
	}
	return false
}
