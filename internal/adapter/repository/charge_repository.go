package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type chargeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewChargeRepository creates a repository for the local Stripe charge mirror
func NewChargeRepository(db *gorm.DB, logger *zap.Logger) repository.ChargeRepository {
	return &chargeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *chargeRepository) Create(ctx context.Context, charge *model.StripeCharge) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(charge).Error; err != nil {
		r.logger.Error("Failed to store charge",
			zap.String("stripe_id", charge.StripeID),
			zap.Error(err))
		return fmt.Errorf("failed to store charge: %w", err)
	}
	return nil
}

func (r *chargeRepository) GetByID(ctx context.Context, id int64) (*model.StripeCharge, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *chargeRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.StripeCharge, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *chargeRepository) GetByStripeID(ctx context.Context, stripeID string) (*model.StripeCharge, error) {
	return r.first(r.db.WithContext(ctx), "stripe_id = ?", stripeID)
}

func (r *chargeRepository) GetByStripeIDForUpdate(ctx context.Context, stripeID string) (*model.StripeCharge, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), "stripe_id = ?", stripeID)
}

func (r *chargeRepository) first(query *gorm.DB, cond string, arg interface{}) (*model.StripeCharge, error) {
	var charge model.StripeCharge
	if err := query.Where(cond, arg).First(&charge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get charge: %w", err)
	}
	return &charge, nil
}

func (r *chargeRepository) Update(ctx context.Context, charge *model.StripeCharge) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(charge).Error; err != nil {
		return fmt.Errorf("failed to update charge: %w", err)
	}
	return nil
}
