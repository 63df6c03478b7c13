package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	"github.com/wekeepgrowing/registripe/internal/metrics"
	"github.com/wekeepgrowing/registripe/internal/usecase"
)

func TestWebhookService_HandleWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("syncs a refunded charge", func(t *testing.T) {
		store := newTestStore(t)
		gateway := new(MockGateway)
		service := usecase.NewWebhookService(store, gateway, metrics.New(), 10, zap.NewNop())

		require.NoError(t, store.Charges().Create(ctx, &model.StripeCharge{
			StripeID: "ch_1",
			Currency: "aud",
			Amount:   decimal.RequireFromString("50.00"),
			Paid:     true,
		}))

		payload := []byte(`{"id":"evt_1"}`)
		refunded := &provider.Charge{
			ID: "ch_1", Amount: 5000, AmountRefunded: 5000, Currency: "aud",
			Paid: true, Refunded: true, Status: "succeeded",
		}
		gateway.On("ConstructEvent", payload, "sig").Return(&provider.WebhookEvent{
			EventID:   "evt_1",
			EventType: "charge.refunded",
			CreatedAt: time.Now().UTC(),
			Charge:    refunded,
		}, nil).Twice()
		gateway.On("RetrieveCharge", mock.Anything, "ch_1").Return(refunded, nil).Once()

		require.NoError(t, service.HandleWebhook(ctx, payload, "sig"))

		charge, err := store.Charges().GetByStripeID(ctx, "ch_1")
		require.NoError(t, err)
		assert.True(t, charge.Refunded)
		assert.True(t, charge.RefundableAmount().IsZero())

		event, err := store.Webhooks().GetEvent(ctx, "evt_1")
		require.NoError(t, err)
		assert.Equal(t, model.WebhookStatusCompleted, event.Status)

		// A redelivery is acknowledged and not reapplied.
		require.NoError(t, service.HandleWebhook(ctx, payload, "sig"))
		gateway.AssertExpectations(t)
	})

	t.Run("creates a mirror for an unknown charge", func(t *testing.T) {
		store := newTestStore(t)
		gateway := new(MockGateway)
		service := usecase.NewWebhookService(store, gateway, nil, 10, zap.NewNop())

		payload := []byte(`{"id":"evt_2"}`)
		fresh := &provider.Charge{ID: "ch_new", Amount: 1500, Currency: "jpy", Paid: true}
		gateway.On("ConstructEvent", payload, "sig").Return(&provider.WebhookEvent{
			EventID:   "evt_2",
			EventType: "charge.succeeded",
			Charge:    fresh,
		}, nil)
		gateway.On("RetrieveCharge", mock.Anything, "ch_new").Return(fresh, nil)

		require.NoError(t, service.HandleWebhook(ctx, payload, "sig"))

		charge, err := store.Charges().GetByStripeID(ctx, "ch_new")
		require.NoError(t, err)
		require.NotNil(t, charge)
		assert.True(t, decimal.NewFromInt(1500).Equal(charge.Amount))
	})

	t.Run("a late charge.succeeded does not undo a refund", func(t *testing.T) {
		store := newTestStore(t)
		gateway := new(MockGateway)
		service := usecase.NewWebhookService(store, gateway, nil, 10, zap.NewNop())

		require.NoError(t, store.Charges().Create(ctx, &model.StripeCharge{
			StripeID:       "ch_late",
			Currency:       "aud",
			Amount:         decimal.RequireFromString("50.00"),
			AmountRefunded: decimal.RequireFromString("50.00"),
			Paid:           true,
			Refunded:       true,
		}))

		payload := []byte(`{"id":"evt_late"}`)
		gateway.On("ConstructEvent", payload, "sig").Return(&provider.WebhookEvent{
			EventID:   "evt_late",
			EventType: "charge.succeeded",
			Charge:    &provider.Charge{ID: "ch_late", Amount: 5000, Currency: "aud", Paid: true, Status: "succeeded"},
		}, nil)
		gateway.On("RetrieveCharge", mock.Anything, "ch_late").Return(&provider.Charge{
			ID: "ch_late", Amount: 5000, AmountRefunded: 5000, Currency: "aud",
			Paid: true, Refunded: true, Status: "succeeded",
		}, nil).Once()

		require.NoError(t, service.HandleWebhook(ctx, payload, "sig"))

		charge, err := store.Charges().GetByStripeID(ctx, "ch_late")
		require.NoError(t, err)
		assert.True(t, charge.Refunded)
		assert.True(t, charge.RefundableAmount().IsZero())
		gateway.AssertExpectations(t)
	})

	t.Run("a replayed event cannot reduce the refunded amount", func(t *testing.T) {
		store := newTestStore(t)
		gateway := new(MockGateway)
		service := usecase.NewWebhookService(store, gateway, nil, 10, zap.NewNop())

		require.NoError(t, store.Charges().Create(ctx, &model.StripeCharge{
			StripeID:       "ch_replay",
			Currency:       "aud",
			Amount:         decimal.RequireFromString("50.00"),
			AmountRefunded: decimal.RequireFromString("20.00"),
			Paid:           true,
		}))

		payload := []byte(`{"id":"evt_old"}`)
		_, err := store.Webhooks().SaveEvent(ctx, &model.StripeWebhookEvent{
			StripeEventID: "evt_old",
			EventType:     "charge.succeeded",
			Status:        model.WebhookStatusFailed,
			Data:          payload,
		})
		require.NoError(t, err)
		record, err := store.Webhooks().GetEvent(ctx, "evt_old")
		require.NoError(t, err)

		gateway.On("ParseEvent", payload).Return(&provider.WebhookEvent{
			EventID:   "evt_old",
			EventType: "charge.succeeded",
			Charge:    &provider.Charge{ID: "ch_replay", Amount: 5000, Currency: "aud", Paid: true},
		}, nil)
		// Even a lagging read from Stripe only ever moves the refund forward.
		gateway.On("RetrieveCharge", mock.Anything, "ch_replay").
			Return(&provider.Charge{ID: "ch_replay", Amount: 5000, AmountRefunded: 0, Currency: "aud", Paid: true}, nil)

		require.NoError(t, service.ProcessEvent(ctx, record))

		charge, err := store.Charges().GetByStripeID(ctx, "ch_replay")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("20").Equal(charge.AmountRefunded))
		assert.True(t, decimal.RequireFromString("30").Equal(charge.RefundableAmount()))
	})

	t.Run("rejects a bad signature", func(t *testing.T) {
		store := newTestStore(t)
		gateway := new(MockGateway)
		service := usecase.NewWebhookService(store, gateway, nil, 10, zap.NewNop())

		gateway.On("ConstructEvent", []byte("{}"), "bad").
			Return(nil, &provider.ProviderError{Code: "invalid_signature", Message: "webhook signature verification failed"})

		err := service.HandleWebhook(ctx, []byte("{}"), "bad")
		_, ok := provider.AsProviderError(err)
		assert.True(t, ok)
	})
}

func TestWebhookService_RetriesFailedEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	gateway := new(MockGateway)
	service := usecase.NewWebhookService(store, gateway, nil, 10, zap.NewNop())

	payload := []byte(`{"id":"evt_d"}`)
	disputeEvent := &provider.WebhookEvent{
		EventID:   "evt_d",
		EventType: "charge.dispute.created",
		Dispute:   &provider.Dispute{ID: "dp_1", ChargeID: "ch_d"},
	}
	gateway.On("ConstructEvent", payload, "sig").Return(disputeEvent, nil)
	gateway.On("RetrieveCharge", ctx, "ch_d").
		Return(nil, &provider.ProviderError{Code: "api_error", Message: "unavailable"}).Once()

	// The failure is stored, not returned.
	require.NoError(t, service.HandleWebhook(ctx, payload, "sig"))

	event, err := store.Webhooks().GetEvent(ctx, "evt_d")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookStatusFailed, event.Status)
	assert.Equal(t, 1, event.ProcessingAttempts)
	require.NotNil(t, event.NextRetryAt)

	gateway.On("ParseEvent", payload).Return(disputeEvent, nil)
	gateway.On("RetrieveCharge", ctx, "ch_d").
		Return(&provider.Charge{ID: "ch_d", Amount: 900, Currency: "aud", Disputed: true, Paid: true}, nil).Once()

	require.NoError(t, service.ProcessEvent(ctx, event))

	event, err = store.Webhooks().GetEvent(ctx, "evt_d")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookStatusCompleted, event.Status)

	charge, err := store.Charges().GetByStripeID(ctx, "ch_d")
	require.NoError(t, err)
	assert.True(t, charge.Disputed)
}

func TestWebhookService_ProcessPending(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	gateway := new(MockGateway)
	service := usecase.NewWebhookService(store, gateway, nil, 10, zap.NewNop())

	payload := []byte(`{"id":"evt_p"}`)
	_, err := store.Webhooks().SaveEvent(ctx, &model.StripeWebhookEvent{
		StripeEventID: "evt_p",
		EventType:     "customer.created",
		Data:          payload,
	})
	require.NoError(t, err)

	gateway.On("ParseEvent", payload).Return(&provider.WebhookEvent{EventID: "evt_p", EventType: "customer.created"}, nil)

	processed, err := service.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	processed, err = service.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)
}

func TestRetryWorker_StopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	service := usecase.NewWebhookService(store, new(MockGateway), nil, 10, zap.NewNop())
	worker := usecase.NewRetryWorker(service, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWebhookService_RefreshCharge(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	gateway := new(MockGateway)
	service := usecase.NewWebhookService(store, gateway, nil, 10, zap.NewNop())

	require.NoError(t, store.Charges().Create(ctx, &model.StripeCharge{
		StripeID: "ch_r",
		Currency: "aud",
		Amount:   decimal.RequireFromString("20.00"),
	}))
	gateway.On("RetrieveCharge", ctx, "ch_r").
		Return(&provider.Charge{ID: "ch_r", Amount: 2000, AmountRefunded: 500, Currency: "aud", Paid: true}, nil)

	require.NoError(t, service.RefreshCharge(ctx, "ch_r"))

	charge, err := store.Charges().GetByStripeID(ctx, "ch_r")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15").Equal(charge.RefundableAmount()))
}
