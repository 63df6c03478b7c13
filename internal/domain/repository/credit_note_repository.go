package repository

import (
	"context"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
)

type CreditNoteRepository interface {
	Create(ctx context.Context, creditNote *model.CreditNote) error
	// GetByID loads the credit note with its invoice, applications and refunds
	GetByID(ctx context.Context, id int64) (*model.CreditNote, error)
	// GetByIDForUpdate is GetByID with the credit note row locked until the
	// surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*model.CreditNote, error)
	CreateApplication(ctx context.Context, application *model.CreditNoteApplication) error
	// CreateStripeRefund stores the refund and its Stripe extension together
	CreateStripeRefund(ctx context.Context, refund *model.StripeCreditNoteRefund) error
	ListStripeRefunds(ctx context.Context, creditNoteID int64) ([]*model.StripeCreditNoteRefund, error)
}
