package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/wekeepgrowing/registripe/internal/domain/errors"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/usecase"
)

func TestInvoiceController_ForID(t *testing.T) {
	store := newTestStore(t)
	controller := usecase.NewInvoiceController(store)
	ctx := context.Background()

	invoice := seedInvoice(t, store, uuid.New(), "100.00")

	got, err := controller.ForID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, got.ID)

	_, err = controller.ForID(ctx, invoice.ID+1)
	assert.ErrorIs(t, err, domainErrors.ErrInvoiceNotFound)
}

func TestInvoiceController_CanView(t *testing.T) {
	store := newTestStore(t)
	controller := usecase.NewInvoiceController(store)
	ctx := context.Background()

	owner := uuid.New()
	invoice := seedInvoice(t, store, owner, "100.00")
	require.NoError(t, store.Attendees().Create(ctx, &model.Attendee{UserID: owner, AccessCode: "XYZ789"}))

	tests := []struct {
		name       string
		user       *model.User
		accessCode string
		want       bool
	}{
		{"owner", &model.User{ID: owner}, "", true},
		{"staff", &model.User{ID: uuid.New(), IsStaff: true}, "", true},
		{"stranger", &model.User{ID: uuid.New()}, "", false},
		{"anonymous with access code", nil, "XYZ789", true},
		{"anonymous with wrong code", nil, "WRONG1", false},
		{"anonymous without code", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := controller.CanView(ctx, invoice, tt.user, tt.accessCode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestInvoiceController_ValidateAllowedToPay(t *testing.T) {
	controller := usecase.NewInvoiceController(nil)

	tests := []struct {
		status  model.InvoiceStatus
		message string
	}{
		{model.InvoiceStatusUnpaid, ""},
		{model.InvoiceStatusPaid, "This invoice is already paid."},
		{model.InvoiceStatusVoid, "This invoice has been voided."},
		{model.InvoiceStatusRefunded, "This invoice has been refunded."},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := controller.ValidateAllowedToPay(&model.Invoice{Status: tt.status})
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := domainErrors.AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestInvoiceController_BalanceAndStatus(t *testing.T) {
	store := newTestStore(t)
	controller := usecase.NewInvoiceController(store)
	ctx := context.Background()

	invoice := seedInvoice(t, store, uuid.New(), "100.00")

	pay := func(amount string) {
		require.NoError(t, store.Payments().Create(ctx, &model.PaymentBase{
			InvoiceID: invoice.ID,
			Time:      time.Now().UTC(),
			Amount:    decimal.RequireFromString(amount),
		}))
	}

	pay("40.00")
	balance, err := controller.BalanceDue(ctx, invoice)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("60").Equal(balance))

	require.NoError(t, controller.UpdateStatus(ctx, invoice))
	assert.True(t, invoice.IsUnpaid())

	pay("60.00")
	require.NoError(t, controller.UpdateStatus(ctx, invoice))
	assert.True(t, invoice.IsPaid())

	reloaded, err := controller.ForID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsPaid())
}

func TestCreditNoteController(t *testing.T) {
	store := newTestStore(t)
	controller := usecase.NewCreditNoteController(store)
	ctx := context.Background()

	invoice := seedInvoice(t, store, uuid.New(), "100.00")
	creditNote := &model.CreditNote{InvoiceID: invoice.ID, Value: decimal.RequireFromString("25.00")}
	require.NoError(t, store.CreditNotes().Create(ctx, creditNote))

	got, err := controller.ForID(ctx, creditNote.ID)
	require.NoError(t, err)
	assert.True(t, controller.IsUnclaimed(got))

	_, err = controller.ForID(ctx, creditNote.ID+5)
	assert.ErrorIs(t, err, domainErrors.ErrCreditNoteNotFound)
}
