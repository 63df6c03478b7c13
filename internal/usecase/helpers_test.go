package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/registripe/internal/config"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	"github.com/wekeepgrowing/registripe/internal/infrastructure/database"
)

func newTestStore(t *testing.T) *database.Repositories {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	}
	db, err := database.NewConnection(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db, zap.NewNop()) })

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return database.NewRepositories(db, zap.NewNop())
}

func seedInvoice(t *testing.T, store *database.Repositories, userID uuid.UUID, value string) *model.Invoice {
	t.Helper()
	invoice := &model.Invoice{
		UserID:    userID,
		Status:    model.InvoiceStatusUnpaid,
		Value:     decimal.RequireFromString(value),
		IssueTime: time.Now().UTC(),
		DueTime:   time.Now().UTC().Add(14 * 24 * time.Hour),
	}
	require.NoError(t, store.Invoices().Create(context.Background(), invoice))
	return invoice
}

// MockGateway is a mock implementation of provider.PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (*provider.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Customer), args.Error(1)
}

func (m *MockGateway) CreateCard(ctx context.Context, customerID, token string) (*provider.Card, error) {
	args := m.Called(ctx, customerID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Card), args.Error(1)
}

func (m *MockGateway) CreateCharge(ctx context.Context, req *provider.CreateChargeRequest) (*provider.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Charge), args.Error(1)
}

func (m *MockGateway) RetrieveCharge(ctx context.Context, chargeID string) (*provider.Charge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Charge), args.Error(1)
}

func (m *MockGateway) CreateRefund(ctx context.Context, req *provider.CreateRefundRequest) (*provider.Refund, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Refund), args.Error(1)
}

func (m *MockGateway) ConstructEvent(payload []byte, signature string) (*provider.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.WebhookEvent), args.Error(1)
}

func (m *MockGateway) ParseEvent(payload []byte) (*provider.WebhookEvent, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.WebhookEvent), args.Error(1)
}

func (m *MockGateway) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// MockPublisher records published messages
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}
