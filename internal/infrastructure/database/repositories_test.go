package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/registripe/internal/config"
	"github.com/wekeepgrowing/registripe/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/registripe/internal/domain/repository"
	"go.uber.org/zap"
)

func newTestRepositories(t *testing.T) *Repositories {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	}
	db, err := NewConnection(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db, zap.NewNop()) })

	require.NoError(t, Migrate(db, zap.NewNop()))
	return NewRepositories(db, zap.NewNop())
}

func TestTransaction_CommitsOnSuccess(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	var id int64
	err := repos.Transaction(ctx, func(tx domainRepo.Store) error {
		invoice := &model.Invoice{
			UserID:    uuid.New(),
			Status:    model.InvoiceStatusUnpaid,
			Value:     decimal.NewFromInt(100),
			IssueTime: time.Now(),
			DueTime:   time.Now(),
		}
		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			return err
		}
		id = invoice.ID
		return nil
	})
	require.NoError(t, err)

	invoice, err := repos.Invoices().GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, invoice)
	assert.Equal(t, model.InvoiceStatusUnpaid, invoice.Status)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var id int64
	err := repos.Transaction(ctx, func(tx domainRepo.Store) error {
		invoice := &model.Invoice{
			UserID: uuid.New(),
			Status: model.InvoiceStatusUnpaid,
			Value:  decimal.NewFromInt(100),
		}
		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			return err
		}
		id = invoice.ID
		return boom
	})
	assert.ErrorIs(t, err, boom)

	invoice, err := repos.Invoices().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, invoice)
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
