package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/registripe/internal/domain/repository"
	"github.com/wekeepgrowing/registripe/internal/metrics"
	"go.uber.org/zap"
)

// Charge events that re-sync the local charge mirror.
var chargeEvents = map[string]bool{
	"charge.succeeded": true,
	"charge.captured":  true,
	"charge.refunded":  true,
	"charge.updated":   true,
	"charge.failed":    true,
}

var disputeEvents = map[string]bool{
	"charge.dispute.created": true,
	"charge.dispute.closed":  true,
}

// WebhookService stores Stripe webhook events and applies them to the
// local charge mirror.
type WebhookService struct {
	store      domainRepo.Store
	gateway    provider.PaymentGateway
	metrics    *metrics.Metrics
	logger     *zap.Logger
	retryBatch int
}

// NewWebhookService creates a new webhook service
func NewWebhookService(store domainRepo.Store, gateway provider.PaymentGateway, m *metrics.Metrics, retryBatch int, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		store:      store,
		gateway:    gateway,
		metrics:    m,
		logger:     logger,
		retryBatch: retryBatch,
	}
}

// HandleWebhook verifies, stores and processes one delivery. Redelivered
// events are acknowledged without being processed again. A processing
// failure is recorded for retry rather than returned, so Stripe does not
// redeliver an event already stored.
func (s *WebhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return err
	}

	record := &model.StripeWebhookEvent{
		StripeEventID: event.EventID,
		EventType:     event.EventType,
		Status:        model.WebhookStatusPending,
		Livemode:      event.Livemode,
		Data:          payload,
	}
	if event.APIVersion != "" {
		version := event.APIVersion
		record.APIVersion = &version
	}
	if !event.CreatedAt.IsZero() {
		created := event.CreatedAt
		record.StripeCreatedAt = &created
	}

	created, err := s.store.Webhooks().SaveEvent(ctx, record)
	if err != nil {
		return err
	}
	if !created {
		s.logger.Info("Duplicate webhook event ignored",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType))
		s.metrics.RecordWebhookEvent(event.EventType, "duplicate")
		return nil
	}
	if err := s.store.Webhooks().MarkProcessing(ctx, event.EventID); err != nil {
		return err
	}

	if err := s.apply(ctx, event); err != nil {
		s.fail(ctx, record, err)
		return nil
	}
	s.complete(ctx, record)
	return nil
}

// ProcessEvent reprocesses a stored event.
func (s *WebhookService) ProcessEvent(ctx context.Context, record *model.StripeWebhookEvent) error {
	if err := s.store.Webhooks().MarkProcessing(ctx, record.StripeEventID); err != nil {
		return err
	}

	event, err := s.gateway.ParseEvent(record.Data)
	if err == nil {
		err = s.apply(ctx, event)
	}
	if err != nil {
		s.fail(ctx, record, err)
		return err
	}
	s.complete(ctx, record)
	return nil
}

// ProcessPending reprocesses events that are due, oldest first. It returns
// how many succeeded.
func (s *WebhookService) ProcessPending(ctx context.Context) (int, error) {
	events, err := s.store.Webhooks().GetPendingEvents(ctx, s.retryBatch)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, record := range events {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		if err := s.ProcessEvent(ctx, record); err == nil {
			processed++
		}
	}
	return processed, nil
}

func (s *WebhookService) complete(ctx context.Context, record *model.StripeWebhookEvent) {
	if err := s.store.Webhooks().MarkProcessed(ctx, record.StripeEventID); err != nil {
		s.logger.Error("Failed to mark webhook processed",
			zap.String("event_id", record.StripeEventID),
			zap.Error(err))
	}
	s.metrics.RecordWebhookEvent(record.EventType, metrics.OutcomeSucceeded)
}

func (s *WebhookService) fail(ctx context.Context, record *model.StripeWebhookEvent, cause error) {
	s.logger.Error("Failed to process webhook event",
		zap.String("event_id", record.StripeEventID),
		zap.String("event_type", record.EventType),
		zap.Error(cause))
	if err := s.store.Webhooks().MarkFailed(ctx, record.StripeEventID, cause); err != nil {
		s.logger.Error("Failed to mark webhook failed",
			zap.String("event_id", record.StripeEventID),
			zap.Error(err))
	}
	s.metrics.RecordWebhookEvent(record.EventType, metrics.OutcomeFailed)
}

func (s *WebhookService) apply(ctx context.Context, event *provider.WebhookEvent) error {
	switch {
	case chargeEvents[event.EventType]:
		if event.Charge == nil || event.Charge.ID == "" {
			return fmt.Errorf("event %s carries no charge", event.EventID)
		}
		// Events arrive out of order and are replayed on retry, so the
		// payload is only used to name the charge.
		return s.RefreshCharge(ctx, event.Charge.ID)

	case disputeEvents[event.EventType]:
		if event.Dispute == nil || event.Dispute.ChargeID == "" {
			return fmt.Errorf("event %s carries no disputed charge", event.EventID)
		}
		return s.RefreshCharge(ctx, event.Dispute.ChargeID)

	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType))
		return nil
	}
}

// RefreshCharge fetches a charge from Stripe and writes it over the local
// mirror. Every webhook that touches a charge goes through here.
func (s *WebhookService) RefreshCharge(ctx context.Context, chargeID string) error {
	charge, err := s.gateway.RetrieveCharge(ctx, chargeID)
	if err != nil {
		return err
	}
	return s.syncCharge(ctx, charge)
}

// syncCharge writes charge's state over its local mirror, creating the
// mirror if the event beat the payment's own transaction.
func (s *WebhookService) syncCharge(ctx context.Context, charge *provider.Charge) error {
	return s.store.Transaction(ctx, func(tx domainRepo.Store) error {
		mirror, err := tx.Charges().GetByStripeIDForUpdate(ctx, charge.ID)
		if err != nil {
			return err
		}

		if mirror != nil {
			applyCharge(mirror, charge)
			return tx.Charges().Update(ctx, mirror)
		}

		var customerID *int64
		if charge.CustomerID != "" {
			mapping, err := tx.Customers().GetByProviderCustomerID(ctx, charge.CustomerID)
			if err != nil {
				return err
			}
			if mapping != nil {
				customerID = &mapping.ID
			}
		}
		return tx.Charges().Create(ctx, chargeToModel(charge, customerID))
	})
}

// RetryWorker periodically reprocesses failed and pending webhook events.
type RetryWorker struct {
	service  *WebhookService
	interval time.Duration
	logger   *zap.Logger
}

func NewRetryWorker(service *WebhookService, interval time.Duration, logger *zap.Logger) *RetryWorker {
	return &RetryWorker{service: service, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *RetryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Webhook retry worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Webhook retry worker stopped")
			return
		case <-ticker.C:
			processed, err := w.service.ProcessPending(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("Webhook retry pass failed", zap.Error(err))
			}
			if processed > 0 {
				w.logger.Info("Reprocessed webhook events", zap.Int("count", processed))
			}
		}
	}
}
