package provider

import (
	"context"
	"errors"
	"time"
)

// PaymentGateway defines the card operations registripe needs from a
// payment provider. Amounts are in the currency's smallest unit.
type PaymentGateway interface {
	// CreateCustomer registers a new customer with the provider
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*Customer, error)

	// CreateCard attaches a tokenized card to a customer
	CreateCard(ctx context.Context, customerID, token string) (*Card, error)

	// CreateCharge charges a customer's card
	CreateCharge(ctx context.Context, req *CreateChargeRequest) (*Charge, error)

	// RetrieveCharge fetches the current state of a charge
	RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error)

	// CreateRefund refunds part or all of a charge
	CreateRefund(ctx context.Context, req *CreateRefundRequest) (*Refund, error)

	// ConstructEvent verifies a webhook payload's signature and parses it
	ConstructEvent(payload []byte, signature string) (*WebhookEvent, error)

	// ParseEvent parses a previously verified webhook payload
	ParseEvent(payload []byte) (*WebhookEvent, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Email    string            `json:"email,omitempty"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Customer is a provider-side customer
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Card is a card source saved on a customer
type Card struct {
	ID       string `json:"id"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int64  `json:"exp_month,omitempty"`
	ExpYear  int64  `json:"exp_year,omitempty"`
}

// CreateChargeRequest represents a charge against a saved card
type CreateChargeRequest struct {
	CustomerID  string            `json:"customer_id"`
	SourceID    string            `json:"source_id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Capture     bool              `json:"capture"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Charge is a provider-side charge
type Charge struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id,omitempty"`
	SourceID       string    `json:"source_id,omitempty"`
	Amount         int64     `json:"amount"`
	AmountRefunded int64     `json:"amount_refunded"`
	Currency       string    `json:"currency"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	Paid           bool      `json:"paid"`
	Refunded       bool      `json:"refunded"`
	Captured       bool      `json:"captured"`
	Disputed       bool      `json:"disputed"`
	ReceiptSent    bool      `json:"receipt_sent"`
	Created        time.Time `json:"created"`
}

// CreateRefundRequest represents a refund against a charge
type CreateRefundRequest struct {
	ChargeID string            `json:"charge_id"`
	Amount   int64             `json:"amount"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Refund is a provider-side refund
type Refund struct {
	ID       string `json:"id"`
	ChargeID string `json:"charge_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// WebhookEvent represents a verified provider webhook event. Charge or
// Dispute is set when the event's object is of that kind.
type WebhookEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Livemode   bool      `json:"livemode"`
	APIVersion string    `json:"api_version,omitempty"`
	Object     []byte    `json:"object"`
	Raw        []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`

	Charge  *Charge  `json:"charge,omitempty"`
	Dispute *Dispute `json:"dispute,omitempty"`
}

// Dispute is a chargeback raised against a charge
type Dispute struct {
	ID       string `json:"id"`
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
}

// ProviderType represents the type of payment provider
type ProviderType string

const (
	ProviderTypeStripe ProviderType = "stripe"
)

// Codes raised locally rather than by the provider's API.
const (
	ErrCodeInvalidSignature = "invalid_signature"
	ErrCodeChargeNotPaid    = "charge_not_paid"
)

// ProviderError is a failure reported by the provider. Message is safe to
// show to the paying user.
type ProviderError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	DeclineCode string `json:"decline_code,omitempty"`
	Details     string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// AsProviderError unwraps err into a ProviderError if it holds one.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
