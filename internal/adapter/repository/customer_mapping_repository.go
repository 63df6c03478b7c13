package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"gorm.io/gorm"
)

// customerMappingRepository stores the user to Stripe customer mapping.
// Each user has at most one Stripe customer.
type customerMappingRepository struct {
	db *gorm.DB
}

func NewCustomerMappingRepository(db *gorm.DB) repository.CustomerMappingRepository {
	return &customerMappingRepository{db: db}
}

func (r *customerMappingRepository) Create(ctx context.Context, mapping *model.CustomerMapping) error {
	if err := r.db.WithContext(ctx).Create(mapping).Error; err != nil {
		return fmt.Errorf("failed to store stripe customer %s: %w", mapping.ProviderCustomerID, err)
	}
	return nil
}

func (r *customerMappingRepository) GetByProviderCustomerID(ctx context.Context, providerCustomerID string) (*model.CustomerMapping, error) {
	return r.first(ctx, "provider_customer_id = ?", providerCustomerID)
}

func (r *customerMappingRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.CustomerMapping, error) {
	return r.first(ctx, "user_id = ?", userID)
}

// first returns nil, nil when nothing matches.
func (r *customerMappingRepository) first(ctx context.Context, query string, arg interface{}) (*model.CustomerMapping, error) {
	var mapping model.CustomerMapping
	err := r.db.WithContext(ctx).Where(query, arg).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stripe customer: %w", err)
	}
	return &mapping, nil
}
