package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	domainErrors "github.com/wekeepgrowing/registripe/internal/domain/errors"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/registripe/internal/domain/repository"
	"github.com/wekeepgrowing/registripe/internal/forms"
	"github.com/wekeepgrowing/registripe/internal/metrics"
	"github.com/wekeepgrowing/registripe/pkg/messaging"
	"go.uber.org/zap"
)

const msgRefundTooLarge = "You must select a payment holding greater value than the credit note."

// CalculateRefundAmount is how much of charge can still be refunded.
func CalculateRefundAmount(charge *model.StripeCharge) decimal.Decimal {
	return charge.RefundableAmount()
}

// RefundService pays credit notes back onto earlier Stripe charges.
type RefundService struct {
	store   domainRepo.Store
	gateway provider.PaymentGateway
	events  *eventPublisher
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRefundService creates a new refund service
func NewRefundService(
	store domainRepo.Store,
	gateway provider.PaymentGateway,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	channelPrefix string,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		store:   store,
		gateway: gateway,
		events:  newEventPublisher(publisher, channelPrefix, logger),
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ProcessRefund refunds the credit note's full value to the charge behind
// the payment chosen on form. The form must have been validated.
func (s *RefundService) ProcessRefund(ctx context.Context, creditNote *model.CreditNote, form *forms.StripeRefundForm) (*model.StripeCreditNoteRefund, error) {
	selected := form.Cleaned()
	if selected == nil {
		return nil, domainErrors.ErrPaymentNotFound
	}

	refund, err := s.processRefund(ctx, creditNote, selected.ChargeID)
	if err != nil {
		s.metrics.RecordRefund(paymentOutcome(err))
		return nil, err
	}

	s.logger.Info("Credit note refunded",
		zap.Int64("credit_note_id", creditNote.ID),
		zap.String("charge_id", refund.Charge.StripeID),
		zap.String("reference", refund.Refund.Reference))

	s.events.publish(ctx, EventCreditNoteRefunded, CreditNoteRefundedEvent{
		CreditNoteID: creditNote.ID,
		InvoiceID:    creditNote.InvoiceID,
		RefundID:     refund.CreditNoteRefundID,
		ChargeID:     refund.Charge.StripeID,
		Amount:       creditNote.Value.StringFixed(2),
		OccurredAt:   refund.Refund.Time,
	})
	s.metrics.RecordRefund(metrics.OutcomeSucceeded)

	return refund, nil
}

func (s *RefundService) processRefund(ctx context.Context, creditNote *model.CreditNote, chargeID int64) (*model.StripeCreditNoteRefund, error) {
	var result *model.StripeCreditNoteRefund

	err := s.store.Transaction(ctx, func(tx domainRepo.Store) error {
		// Reload and lock both before Stripe is called. A second submission
		// waits here and then finds the credit note claimed.
		current, err := tx.CreditNotes().GetByIDForUpdate(ctx, creditNote.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return domainErrors.ErrCreditNoteNotFound
		}
		if !current.IsUnclaimed() {
			return domainErrors.ErrCreditNoteClaimed
		}

		charge, err := tx.Charges().GetByIDForUpdate(ctx, chargeID)
		if err != nil {
			return err
		}
		if charge == nil {
			return domainErrors.ErrPaymentNotFound
		}

		toRefund := current.Value
		maxRefund := CalculateRefundAmount(charge)
		if maxRefund.LessThan(toRefund) {
			return domainErrors.NewValidationError(msgRefundTooLarge)
		}

		if _, err := s.gateway.CreateRefund(ctx, &provider.CreateRefundRequest{
			ChargeID: charge.StripeID,
			Amount:   model.ToAPIAmount(toRefund, charge.Currency),
			Metadata: map[string]string{
				"credit_note_id": fmt.Sprint(current.ID),
			},
		}); err != nil {
			return err
		}

		charge.AmountRefunded = charge.AmountRefunded.Add(toRefund)
		charge.Refunded = !charge.AmountRefunded.LessThan(charge.Amount)
		if err := tx.Charges().Update(ctx, charge); err != nil {
			s.logger.Error("Refund issued but charge could not be updated",
				zap.String("charge_id", charge.StripeID),
				zap.Int64("credit_note_id", current.ID),
				zap.Error(err))
			return err
		}

		refund := &model.StripeCreditNoteRefund{
			ChargeID: charge.ID,
			Refund: model.CreditNoteRefund{
				ParentID:  current.ID,
				Time:      s.now(),
				Reference: fmt.Sprintf("Refunded %s to Stripe charge %s", toRefund.StringFixed(2), charge.StripeID),
			},
		}
		if err := tx.CreditNotes().CreateStripeRefund(ctx, refund); err != nil {
			s.logger.Error("Refund issued but could not be recorded",
				zap.String("charge_id", charge.StripeID),
				zap.Int64("credit_note_id", current.ID),
				zap.Error(err))
			return err
		}
		refund.Charge = *charge

		result = refund
		return nil
	})
	return result, err
}
