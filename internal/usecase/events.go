package usecase

import (
	"context"
	"time"

	"github.com/wekeepgrowing/registripe/pkg/messaging"
	"go.uber.org/zap"
)

const (
	EventInvoicePaid        = "invoice.paid"
	EventCreditNoteRefunded = "credit_note.refunded"
)

// InvoicePaidEvent is published after a card payment settles an invoice.
type InvoicePaidEvent struct {
	InvoiceID     int64     `json:"invoice_id"`
	UserID        string    `json:"user_id"`
	PaymentID     int64     `json:"payment_id"`
	ChargeID      string    `json:"charge_id"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	InvoiceStatus string    `json:"invoice_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// CreditNoteRefundedEvent is published after a credit note is refunded to
// a Stripe charge.
type CreditNoteRefundedEvent struct {
	CreditNoteID int64     `json:"credit_note_id"`
	InvoiceID    int64     `json:"invoice_id"`
	RefundID     int64     `json:"refund_id"`
	ChargeID     string    `json:"charge_id"`
	Amount       string    `json:"amount"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// eventPublisher prefixes channels and never fails the caller: the ledger
// is already committed by the time events go out.
type eventPublisher struct {
	publisher messaging.Publisher
	prefix    string
	logger    *zap.Logger
}

func newEventPublisher(publisher messaging.Publisher, prefix string, logger *zap.Logger) *eventPublisher {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &eventPublisher{publisher: publisher, prefix: prefix, logger: logger}
}

func (p *eventPublisher) channel(event string) string {
	if p.prefix == "" {
		return event
	}
	return p.prefix + "." + event
}

func (p *eventPublisher) publish(ctx context.Context, event string, message interface{}) {
	channel := p.channel(event)
	if err := p.publisher.Publish(ctx, channel, message); err != nil {
		p.logger.Warn("Failed to publish event",
			zap.String("channel", channel),
			zap.Error(err))
	}
}
