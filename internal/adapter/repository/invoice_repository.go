package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB, logger *zap.Logger) repository.InvoiceRepository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int64) (*model.Invoice, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *invoiceRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Invoice, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *invoiceRepository) get(query *gorm.DB, id int64) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := query.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get invoice",
			zap.Int64("invoice_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id int64, status model.InvoiceStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("invoice not found: %d", id)
	}
	return nil
}

func (r *invoiceRepository) TotalPaid(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	// Summed in Go so the result does not depend on how the driver
	// returns SUM over a numeric column.
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.PaymentBase{}).
		Where("invoice_id = ?", invoiceID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}

type attendeeRepository struct {
	db *gorm.DB
}

func NewAttendeeRepository(db *gorm.DB) repository.AttendeeRepository {
	return &attendeeRepository{db: db}
}

func (r *attendeeRepository) Create(ctx context.Context, attendee *model.Attendee) error {
	return r.db.WithContext(ctx).Create(attendee).Error
}

func (r *attendeeRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Attendee, error) {
	var attendee model.Attendee
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&attendee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attendee, nil
}
