package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
	"github.com/wekeepgrowing/registripe/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	retryBaseDelay = 5 * time.Minute
	retryMaxDelay  = 24 * time.Hour

	// ProcessingLease is how long an event may stay in processing before it
	// is considered abandoned and handed out again.
	ProcessingLease = 10 * time.Minute
)

// RetryBackoff returns how long to wait before retrying an event that has
// failed attempts times: 5, 10, 20, 40 minutes and so on, capped at a day.
func RetryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := retryBaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) repository.WebhookRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SaveEvent saves a new webhook event
func (r *webhookRepository) SaveEvent(ctx context.Context, event *model.StripeWebhookEvent) (bool, error) {
	if event.Status == "" {
		event.Status = model.WebhookStatusPending
	}

	// Stripe redelivers events; the unique event ID keeps one row per event.
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", event.StripeEventID),
			zap.String("event_type", event.EventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetEvent retrieves a webhook event by its Stripe ID
func (r *webhookRepository) GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error) {
	var event model.StripeWebhookEvent

	err := r.db.WithContext(ctx).
		Where("stripe_event_id = ?", eventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// MarkProcessing claims the event for ProcessingLease. If the process dies
// before the outcome is recorded, the event becomes due again afterwards.
func (r *webhookRepository) MarkProcessing(ctx context.Context, eventID string) error {
	leaseEnd := r.now().Add(ProcessingLease)
	return r.setStatus(ctx, eventID, map[string]interface{}{
		"status":        model.WebhookStatusProcessing,
		"next_retry_at": &leaseEnd,
	})
}

// MarkProcessed marks a webhook event as processed
func (r *webhookRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := r.now()
	return r.setStatus(ctx, eventID, map[string]interface{}{
		"status":        model.WebhookStatusCompleted,
		"processed_at":  &now,
		"next_retry_at": nil,
	})
}

func (r *webhookRepository) setStatus(ctx context.Context, eventID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.StripeWebhookEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to update webhook status",
			zap.String("event_id", eventID),
			zap.Any("status", updates["status"]),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update webhook status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed records a failed attempt and schedules the next retry
func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	var event model.StripeWebhookEvent
	if err := r.db.WithContext(ctx).
		Where("stripe_event_id = ?", eventID).
		First(&event).Error; err != nil {
		r.logger.Error("Failed to get webhook event for failure update",
			zap.String("event_id", eventID),
			zap.Error(err))
		return fmt.Errorf("failed to get webhook event: %w", err)
	}

	attempts := event.ProcessingAttempts + 1
	nextRetry := r.now().Add(RetryBackoff(attempts))
	errorMsg := cause.Error()

	return r.setStatus(ctx, eventID, map[string]interface{}{
		"status":              model.WebhookStatusFailed,
		"processing_attempts": attempts,
		"last_error":          &errorMsg,
		"next_retry_at":       &nextRetry,
	})
}

// GetPendingEvents retrieves events that are due for (re)processing,
// including processing events whose lease has run out
func (r *webhookRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.StripeWebhookEvent, error) {
	var events []*model.StripeWebhookEvent

	query := r.db.WithContext(ctx).
		Where("status IN (?, ?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			model.WebhookStatusPending,
			model.WebhookStatusFailed,
			model.WebhookStatusProcessing,
			r.now()).
		Order("created_at ASC").
		Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to get pending webhook events",
			zap.Error(err))
		return nil, fmt.Errorf("failed to get pending webhook events: %w", err)
	}

	return events, nil
}
