package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/shopspring/decimal"
	domainErrors "github.com/wekeepgrowing/registripe/internal/domain/errors"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/registripe/internal/domain/repository"
)

const (
	msgInvoicePaid     = "This invoice is already paid."
	msgInvoiceVoid     = "This invoice has been voided."
	msgInvoiceRefunded = "This invoice has been refunded."
)

// InvoiceController answers questions about a single invoice and moves it
// through its statuses.
type InvoiceController struct {
	store domainRepo.Store
}

func NewInvoiceController(store domainRepo.Store) *InvoiceController {
	return &InvoiceController{store: store}
}

// ForID loads an invoice or returns ErrInvoiceNotFound.
func (c *InvoiceController) ForID(ctx context.Context, id int64) (*model.Invoice, error) {
	invoice, err := c.store.Invoices().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domainErrors.ErrInvoiceNotFound
	}
	return invoice, nil
}

// CanView reports whether user, or whoever holds accessCode, may see the
// invoice. Owners and staff always can.
func (c *InvoiceController) CanView(ctx context.Context, invoice *model.Invoice, user *model.User, accessCode string) (bool, error) {
	if user.IsAuthenticated() && (user.IsStaff || user.ID == invoice.UserID) {
		return true, nil
	}
	if accessCode == "" {
		return false, nil
	}

	attendee, err := c.store.Attendees().GetByUserID(ctx, invoice.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to load attendee: %w", err)
	}
	if attendee == nil || attendee.AccessCode == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(attendee.AccessCode), []byte(accessCode)) == 1, nil
}

// BalanceDue is the invoice value less everything already paid against it.
func (c *InvoiceController) BalanceDue(ctx context.Context, invoice *model.Invoice) (decimal.Decimal, error) {
	paid, err := c.store.Invoices().TotalPaid(ctx, invoice.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return invoice.Value.Sub(paid), nil
}

// ValidateAllowedToPay rejects invoices that can no longer take payments.
func (c *InvoiceController) ValidateAllowedToPay(invoice *model.Invoice) error {
	switch invoice.Status {
	case model.InvoiceStatusPaid:
		return domainErrors.NewValidationError(msgInvoicePaid)
	case model.InvoiceStatusVoid:
		return domainErrors.NewValidationError(msgInvoiceVoid)
	case model.InvoiceStatusRefunded:
		return domainErrors.NewValidationError(msgInvoiceRefunded)
	}
	return nil
}

// UpdateStatus marks an unpaid invoice paid once nothing is left owing.
func (c *InvoiceController) UpdateStatus(ctx context.Context, invoice *model.Invoice) error {
	if !invoice.IsUnpaid() {
		return nil
	}

	balance, err := c.BalanceDue(ctx, invoice)
	if err != nil {
		return err
	}
	if balance.IsPositive() {
		return nil
	}

	if err := c.store.Invoices().UpdateStatus(ctx, invoice.ID, model.InvoiceStatusPaid); err != nil {
		return err
	}
	invoice.Status = model.InvoiceStatusPaid
	return nil
}
