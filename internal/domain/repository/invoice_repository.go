package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	GetByID(ctx context.Context, id int64) (*model.Invoice, error)
	// GetByIDForUpdate locks the invoice row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status model.InvoiceStatus) error
	// TotalPaid sums the amounts of every payment against the invoice
	TotalPaid(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
}

type AttendeeRepository interface {
	Create(ctx context.Context, attendee *model.Attendee) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Attendee, error)
}
