package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
)

type PaymentRepository interface {
	// Create stores a payment made by any method
	Create(ctx context.Context, payment *model.PaymentBase) error
	// CreateStripePayment stores the base payment and its Stripe extension together
	CreateStripePayment(ctx context.Context, payment *model.StripePayment) error
	GetStripePayment(ctx context.Context, id int64) (*model.StripePayment, error)
	// ListStripePaymentsByUser returns every Stripe payment against the user's
	// invoices with Payment and Charge loaded, newest first.
	ListStripePaymentsByUser(ctx context.Context, userID uuid.UUID) ([]*model.StripePayment, error)
	// ListRecentStripePaymentsByUser is ListStripePaymentsByUser capped at
	// limit rows in the query itself.
	ListRecentStripePaymentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.StripePayment, error)
}
