package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/wekeepgrowing/registripe/internal/domain/errors"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/registripe/internal/domain/repository"
	"github.com/wekeepgrowing/registripe/internal/forms"
	"github.com/wekeepgrowing/registripe/internal/metrics"
	"github.com/wekeepgrowing/registripe/pkg/messaging"
	"go.uber.org/zap"
)

// PaymentSettings are the conference-wide values a card payment needs.
type PaymentSettings struct {
	ConferenceTitle string
	Currency        string
	ChannelPrefix   string
}

// CardPaymentService charges a Stripe.js token against an invoice.
type CardPaymentService struct {
	store    domainRepo.Store
	gateway  provider.PaymentGateway
	events   *eventPublisher
	metrics  *metrics.Metrics
	settings PaymentSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewCardPaymentService creates a new card payment service
func NewCardPaymentService(
	store domainRepo.Store,
	gateway provider.PaymentGateway,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	settings PaymentSettings,
	logger *zap.Logger,
) *CardPaymentService {
	settings.Currency = strings.ToLower(settings.Currency)
	return &CardPaymentService{
		store:    store,
		gateway:  gateway,
		events:   newEventPublisher(publisher, settings.ChannelPrefix, logger),
		metrics:  m,
		settings: settings,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PaymentResult is what a successful ProcessCard recorded.
type PaymentResult struct {
	Invoice *model.Invoice
	Payment *model.StripePayment
	Charge  *model.StripeCharge
}

// ProcessCard pays the invoice's balance due with the form's token. The
// ledger writes share one transaction; if Stripe refuses the card nothing
// is written. A declined card comes back as a *provider.ProviderError.
func (s *CardPaymentService) ProcessCard(ctx context.Context, form *forms.CreditCardForm, invoice *model.Invoice) (*PaymentResult, error) {
	var result *PaymentResult

	err := s.store.Transaction(ctx, func(tx domainRepo.Store) error {
		inv, err := tx.Invoices().GetByIDForUpdate(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domainErrors.ErrInvoiceNotFound
		}

		invoices := NewInvoiceController(tx)
		if err := invoices.ValidateAllowedToPay(inv); err != nil {
			return err
		}

		amount, err := invoices.BalanceDue(ctx, inv)
		if err != nil {
			return err
		}
		if !amount.IsPositive() {
			return domainErrors.NewValidationError(msgInvoicePaid)
		}

		mapping, err := s.customerFor(ctx, tx, inv)
		if err != nil {
			return err
		}

		card, err := s.gateway.CreateCard(ctx, mapping.ProviderCustomerID, form.StripeToken)
		if err != nil {
			return err
		}

		charge, err := s.gateway.CreateCharge(ctx, &provider.CreateChargeRequest{
			CustomerID:  mapping.ProviderCustomerID,
			SourceID:    card.ID,
			Amount:      model.ToAPIAmount(amount, s.settings.Currency),
			Currency:    s.settings.Currency,
			Description: fmt.Sprintf("Payment for %s invoice #%d", s.settings.ConferenceTitle, inv.ID),
			Capture:     true,
			Metadata: map[string]string{
				"invoice_id": fmt.Sprint(inv.ID),
				"user_id":    inv.UserID.String(),
			},
		})
		if err != nil {
			return err
		}
		if !charge.Paid {
			return &provider.ProviderError{
				Code:    provider.ErrCodeChargeNotPaid,
				Message: "Your card was not charged. Please try again.",
				Details: charge.Status,
			}
		}

		mirror, err := s.mirrorCharge(ctx, tx, charge, mapping.ID)
		if err != nil {
			s.logger.Error("Charge captured but could not be recorded",
				zap.String("charge_id", charge.ID),
				zap.Int64("invoice_id", inv.ID),
				zap.Error(err))
			return err
		}

		payment := &model.StripePayment{
			ChargeID: mirror.ID,
			Payment: model.PaymentBase{
				InvoiceID: inv.ID,
				Time:      s.now(),
				Reference: "Paid with Stripe reference: " + charge.ID,
				Amount:    model.FromAPIAmount(charge.Amount, charge.Currency),
			},
		}
		if err := tx.Payments().CreateStripePayment(ctx, payment); err != nil {
			s.logger.Error("Charge captured but payment could not be recorded",
				zap.String("charge_id", charge.ID),
				zap.Int64("invoice_id", inv.ID),
				zap.Error(err))
			return err
		}
		payment.Charge = *mirror

		if err := invoices.UpdateStatus(ctx, inv); err != nil {
			return err
		}

		result = &PaymentResult{Invoice: inv, Payment: payment, Charge: mirror}
		return nil
	})
	if err != nil {
		s.metrics.RecordPayment(paymentOutcome(err))
		return nil, err
	}

	s.logger.Info("Invoice paid by card",
		zap.Int64("invoice_id", result.Invoice.ID),
		zap.String("charge_id", result.Charge.StripeID),
		zap.String("amount", result.Payment.Payment.Amount.String()),
		zap.String("status", string(result.Invoice.Status)))

	s.events.publish(ctx, EventInvoicePaid, InvoicePaidEvent{
		InvoiceID:     result.Invoice.ID,
		UserID:        result.Invoice.UserID.String(),
		PaymentID:     result.Payment.PaymentBaseID,
		ChargeID:      result.Charge.StripeID,
		Amount:        result.Payment.Payment.Amount.StringFixed(2),
		Currency:      result.Charge.Currency,
		InvoiceStatus: string(result.Invoice.Status),
		OccurredAt:    result.Payment.Payment.Time,
	})
	s.metrics.RecordPayment(metrics.OutcomeSucceeded)

	return result, nil
}

// customerFor returns the Stripe customer of the invoice's owner, creating
// one on first payment.
func (s *CardPaymentService) customerFor(ctx context.Context, tx domainRepo.Store, invoice *model.Invoice) (*model.CustomerMapping, error) {
	mapping, err := tx.Customers().GetByUserID(ctx, invoice.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer mapping: %w", err)
	}
	if mapping != nil {
		return mapping, nil
	}

	var email string
	attendee, err := tx.Attendees().GetByUserID(ctx, invoice.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}
	if attendee != nil {
		email = attendee.Email
	}

	customer, err := s.gateway.CreateCustomer(ctx, &provider.CreateCustomerRequest{
		Email:    email,
		Metadata: map[string]string{"user_id": invoice.UserID.String()},
	})
	if err != nil {
		return nil, err
	}

	mapping = &model.CustomerMapping{
		ProviderCustomerID: customer.ID,
		UserID:             invoice.UserID,
		CustomerEmail:      email,
	}
	if err := tx.Customers().Create(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to store customer mapping: %w", err)
	}
	return mapping, nil
}

func paymentOutcome(err error) string {
	if _, ok := provider.AsProviderError(err); ok {
		return metrics.OutcomeDeclined
	}
	if _, ok := domainErrors.AsValidationError(err); ok {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

// chargeToModel converts a provider charge to its local mirror.
func chargeToModel(charge *provider.Charge, customerID *int64) *model.StripeCharge {
	created := charge.Created
	m := &model.StripeCharge{
		StripeID:   charge.ID,
		CustomerID: customerID,
		SourceID:   charge.SourceID,
		Currency:   strings.ToLower(charge.Currency),
	}
	applyCharge(m, charge)
	if !created.IsZero() {
		m.ChargeCreated = &created
	}
	return m
}

// applyCharge copies the mutable state of charge onto its mirror. The
// refunded amount never decreases and Refunded never reverts.
func applyCharge(m *model.StripeCharge, charge *provider.Charge) {
	currency := m.Currency
	if charge.Currency != "" {
		currency = strings.ToLower(charge.Currency)
		m.Currency = currency
	}
	m.Amount = model.FromAPIAmount(charge.Amount, currency)
	// Refunds only accumulate. A stale snapshot must not hand back value
	// that has already been refunded.
	if refunded := model.FromAPIAmount(charge.AmountRefunded, currency); refunded.GreaterThan(m.AmountRefunded) {
		m.AmountRefunded = refunded
	}
	m.Description = charge.Description
	m.Status = charge.Status
	m.Paid = charge.Paid
	m.Refunded = m.Refunded || charge.Refunded
	m.Captured = charge.Captured
	m.Disputed = charge.Disputed
	m.ReceiptSent = charge.ReceiptSent
}

// mirrorCharge records charge locally. A webhook may already have created
// the mirror, in which case it is brought up to date instead.
func (s *CardPaymentService) mirrorCharge(ctx context.Context, tx domainRepo.Store, charge *provider.Charge, customerID int64) (*model.StripeCharge, error) {
	existing, err := tx.Charges().GetByStripeIDForUpdate(ctx, charge.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		mirror := chargeToModel(charge, &customerID)
		return mirror, tx.Charges().Create(ctx, mirror)
	}
	applyCharge(existing, charge)
	existing.CustomerID = &customerID
	return existing, tx.Charges().Update(ctx, existing)
}
