package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/usecase"
)

func TestPaymentUsecase_GetUserPayments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	userID := uuid.New()
	invoice := seedInvoice(t, store, userID, "300.00")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		charge := &model.StripeCharge{
			StripeID: fmt.Sprintf("ch_%d", i),
			Currency: "aud",
			Amount:   decimal.RequireFromString("100.00"),
			Paid:     true,
		}
		require.NoError(t, store.Charges().Create(ctx, charge))
		require.NoError(t, store.Payments().CreateStripePayment(ctx, &model.StripePayment{
			ChargeID: charge.ID,
			Payment: model.PaymentBase{
				InvoiceID: invoice.ID,
				Time:      base.Add(time.Duration(i) * time.Minute),
				Reference: "Paid with Stripe reference: " + charge.StripeID,
				Amount:    decimal.RequireFromString("100.00"),
			},
		}))
	}

	uc := usecase.NewPaymentUsecase(store.Payments(), zap.NewNop())

	t.Run("newest first with default limit", func(t *testing.T) {
		resp, err := uc.GetUserPayments(ctx, userID, 0)
		require.NoError(t, err)
		assert.Equal(t, 10, resp.Limit)
		assert.False(t, resp.HasMore)
		require.Len(t, resp.Payments, 3)
		assert.Equal(t, "ch_2", resp.Payments[0].ChargeID)
		assert.Equal(t, "ch_0", resp.Payments[2].ChargeID)
		assert.Equal(t, invoice.ID, resp.Payments[0].InvoiceID)
	})

	t.Run("limit truncates", func(t *testing.T) {
		resp, err := uc.GetUserPayments(ctx, userID, 2)
		require.NoError(t, err)
		assert.Len(t, resp.Payments, 2)
		assert.True(t, resp.HasMore)
	})

	t.Run("limit is capped", func(t *testing.T) {
		resp, err := uc.GetUserPayments(ctx, userID, 1000)
		require.NoError(t, err)
		assert.Equal(t, 100, resp.Limit)
	})

	t.Run("nil user", func(t *testing.T) {
		_, err := uc.GetUserPayments(ctx, uuid.Nil, 5)
		assert.Error(t, err)
	})
}
