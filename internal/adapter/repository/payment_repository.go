package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.PaymentBase) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) CreateStripePayment(ctx context.Context, payment *model.StripePayment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&payment.Payment).Error; err != nil {
			return err
		}
		payment.PaymentBaseID = payment.Payment.ID
		return tx.Omit(clause.Associations).Create(payment).Error
	})
	if err != nil {
		r.logger.Error("Failed to create stripe payment",
			zap.Int64("invoice_id", payment.Payment.InvoiceID),
			zap.Int64("charge_id", payment.ChargeID),
			zap.Error(err))
		return fmt.Errorf("failed to create stripe payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetStripePayment(ctx context.Context, id int64) (*model.StripePayment, error) {
	var payment model.StripePayment
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Preload("Charge").
		First(&payment, "payment_base_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stripe payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListStripePaymentsByUser(ctx context.Context, userID uuid.UUID) ([]*model.StripePayment, error) {
	return r.listByUser(ctx, userID, 0)
}

func (r *paymentRepository) ListRecentStripePaymentsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.StripePayment, error) {
	return r.listByUser(ctx, userID, limit)
}

// listByUser returns the user's Stripe payments newest first. A limit of
// zero or less returns all of them.
func (r *paymentRepository) listByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.StripePayment, error) {
	var payments []*model.StripePayment
	query := r.db.WithContext(ctx).
		Joins("JOIN payments ON payments.id = stripe_payments.payment_base_id").
		Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Where("invoices.user_id = ?", userID).
		Order("payments.time DESC").
		Order("stripe_payments.payment_base_id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.
		Preload("Payment").
		Preload("Charge").
		Find(&payments).Error
	if err != nil {
		r.logger.Error("Failed to list stripe payments",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list stripe payments: %w", err)
	}
	return payments, nil
}
