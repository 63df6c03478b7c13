package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/registripe/internal/domain/errors"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"github.com/wekeepgrowing/registripe/internal/forms"
	"github.com/wekeepgrowing/registripe/internal/usecase"
	"go.uber.org/zap"
)

type RefundHandler struct {
	creditNotes   *usecase.CreditNoteController
	refunds       *usecase.RefundService
	payments      repository.PaymentRepository
	creditNoteURL string
	logger        *zap.Logger
}

func NewRefundHandler(
	creditNotes *usecase.CreditNoteController,
	refunds *usecase.RefundService,
	payments repository.PaymentRepository,
	creditNoteURL string,
	logger *zap.Logger,
) *RefundHandler {
	return &RefundHandler{
		creditNotes:   creditNotes,
		refunds:       refunds,
		payments:      payments,
		creditNoteURL: creditNoteURL,
		logger:        logger,
	}
}

type refundPage struct {
	CreditNote *model.CreditNote
	Value      string
	Form       *forms.StripeRefundForm
	CSRFToken  string
}

// Refund lets staff pay an unclaimed credit note back onto one of its
// owner's Stripe charges. Staff access is enforced by the route.
func (h *RefundHandler) Refund(c echo.Context) error {
	ctx := c.Request().Context()

	creditNoteID, err := strconv.ParseInt(c.Param("credit_note_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	creditNote, err := h.creditNotes.ForID(ctx, creditNoteID)
	if errors.Is(err, domainErrors.ErrCreditNoteNotFound) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	toCreditNote := fmt.Sprintf(h.creditNoteURL, creditNote.ID)
	if !h.creditNotes.IsUnclaimed(creditNote) {
		return c.Redirect(http.StatusFound, toCreditNote)
	}

	form, err := forms.NewStripeRefundForm(ctx, h.payments, creditNote.Invoice.UserID, creditNote.Value)
	if err != nil {
		return err
	}

	if c.Request().Method == http.MethodPost {
		if err := form.Bind(c); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed form data")
		}

		if form.IsValid() {
			_, err := h.refunds.ProcessRefund(ctx, creditNote, form)
			switch {
			case err == nil, errors.Is(err, domainErrors.ErrCreditNoteClaimed):
				return c.Redirect(http.StatusFound, toCreditNote)
			case !addNonFieldError(form, err):
				return err
			}
		}
	}

	return c.Render(http.StatusOK, "refund.html", refundPage{
		CreditNote: creditNote,
		Value:      creditNote.Value.StringFixed(2),
		Form:       form,
		CSRFToken:  CSRFToken(c),
	})
}
