package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
)

type CustomerMappingRepository interface {
	Create(ctx context.Context, mapping *model.CustomerMapping) error
	GetByProviderCustomerID(ctx context.Context, providerCustomerID string) (*model.CustomerMapping, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.CustomerMapping, error)
}
