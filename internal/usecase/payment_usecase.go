package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/registripe/internal/domain/dto"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	defaultPaymentLimit = 10
	maxPaymentLimit     = 100
)

// PaymentUsecase answers read-only questions about Stripe payments.
type PaymentUsecase struct {
	paymentRepo repository.PaymentRepository
	logger      *zap.Logger
}

func NewPaymentUsecase(paymentRepo repository.PaymentRepository, logger *zap.Logger) *PaymentUsecase {
	return &PaymentUsecase{
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// GetUserPayments lists the user's most recent Stripe payments. limit is
// clamped to 1..100 and defaults to 10.
func (u *PaymentUsecase) GetUserPayments(ctx context.Context, userID uuid.UUID, limit int) (*dto.PaymentListResponse, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user ID is required")
	}

	if limit < 1 {
		limit = defaultPaymentLimit
	} else if limit > maxPaymentLimit {
		limit = maxPaymentLimit
	}

	// One extra row tells whether there are more.
	payments, err := u.paymentRepo.ListRecentStripePaymentsByUser(ctx, userID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(payments) > limit
	if hasMore {
		payments = payments[:limit]
	}

	resp := &dto.PaymentListResponse{
		Payments: make([]dto.StripePaymentDTO, 0, len(payments)),
		Limit:    limit,
		HasMore:  hasMore,
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, toPaymentDTO(p))
	}
	return resp, nil
}

func toPaymentDTO(p *model.StripePayment) dto.StripePaymentDTO {
	return dto.StripePaymentDTO{
		ID:         p.PaymentBaseID,
		InvoiceID:  p.Payment.InvoiceID,
		Time:       p.Payment.Time,
		Reference:  p.Payment.Reference,
		Amount:     p.Payment.Amount.StringFixed(2),
		Currency:   p.Charge.Currency,
		ChargeID:   p.Charge.StripeID,
		Refundable: p.Charge.RefundableAmount().StringFixed(2),
		Refunded:   p.Charge.Refunded,
		Disputed:   p.Charge.Disputed,
	}
}
