package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type creditNoteRepository struct {
	db *gorm.DB
}

func NewCreditNoteRepository(db *gorm.DB) repository.CreditNoteRepository {
	return &creditNoteRepository{db: db}
}

func (r *creditNoteRepository) Create(ctx context.Context, creditNote *model.CreditNote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(creditNote).Error
}

func (r *creditNoteRepository) GetByID(ctx context.Context, id int64) (*model.CreditNote, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate locks the credit note before its claims are loaded, so a
// concurrent refund that committed first is always seen.
func (r *creditNoteRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.CreditNote, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *creditNoteRepository) get(query *gorm.DB, id int64) (*model.CreditNote, error) {
	var creditNote model.CreditNote
	err := query.
		Preload("Invoice").
		Preload("Applications").
		Preload("Refunds").
		First(&creditNote, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credit note: %w", err)
	}
	return &creditNote, nil
}

func (r *creditNoteRepository) CreateApplication(ctx context.Context, application *model.CreditNoteApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *creditNoteRepository) CreateStripeRefund(ctx context.Context, refund *model.StripeCreditNoteRefund) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&refund.Refund).Error; err != nil {
			return fmt.Errorf("failed to create credit note refund: %w", err)
		}
		refund.CreditNoteRefundID = refund.Refund.ID
		if err := tx.Omit(clause.Associations).Create(refund).Error; err != nil {
			return fmt.Errorf("failed to create stripe credit note refund: %w", err)
		}
		return nil
	})
}

func (r *creditNoteRepository) ListStripeRefunds(ctx context.Context, creditNoteID int64) ([]*model.StripeCreditNoteRefund, error) {
	var refunds []*model.StripeCreditNoteRefund
	err := r.db.WithContext(ctx).
		Joins("JOIN credit_note_refunds ON credit_note_refunds.id = stripe_credit_note_refunds.credit_note_refund_id").
		Where("credit_note_refunds.parent_id = ?", creditNoteID).
		Preload("Refund").
		Preload("Charge").
		Find(&refunds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stripe refunds: %w", err)
	}
	return refunds, nil
}
