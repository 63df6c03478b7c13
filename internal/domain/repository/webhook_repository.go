package repository

import (
	"context"

	"github.com/wekeepgrowing/registripe/internal/domain/model"
)

// WebhookRepository handles webhook event storage and processing
type WebhookRepository interface {
	// SaveEvent stores the event unless one with the same Stripe ID exists.
	// It reports whether a new row was written.
	SaveEvent(ctx context.Context, event *model.StripeWebhookEvent) (bool, error)
	GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error)
	MarkProcessing(ctx context.Context, eventID string) error
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, err error) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.StripeWebhookEvent, error)
}
