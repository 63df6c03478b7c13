package repository

import (
	"context"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
)

// ChargeRepository stores the local mirror of Stripe charges
type ChargeRepository interface {
	Create(ctx context.Context, charge *model.StripeCharge) error
	GetByID(ctx context.Context, id int64) (*model.StripeCharge, error)
	GetByStripeID(ctx context.Context, stripeID string) (*model.StripeCharge, error)
	// The ForUpdate variants lock the row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*model.StripeCharge, error)
	GetByStripeIDForUpdate(ctx context.Context, stripeID string) (*model.StripeCharge, error)
	Update(ctx context.Context, charge *model.StripeCharge) error
}
