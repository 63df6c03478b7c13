// Package stripe implements provider.PaymentGateway on top of stripe-go.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/card"
	"github.com/stripe/stripe-go/v79/charge"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/refund"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/wekeepgrowing/registripe/internal/domain/provider"
	"github.com/wekeepgrowing/registripe/internal/metrics"
	"go.uber.org/zap"
)

// StripeProvider implements the PaymentGateway interface for Stripe
type StripeProvider struct {
	customers     customer.Client
	cards         card.Client
	charges       charge.Client
	refunds       refund.Client
	webhookSecret string
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// Option customises a StripeProvider
type Option func(*StripeProvider)

// WithBackend routes API calls through backend instead of the default
// api.stripe.com backend.
func WithBackend(backend stripe.Backend) Option {
	return func(s *StripeProvider) {
		s.customers.B = backend
		s.cards.B = backend
		s.charges.B = backend
		s.refunds.B = backend
	}
}

// WithMetrics records call latency and errors
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *StripeProvider) {
		s.metrics = m
	}
}

// NewStripeProvider creates a new Stripe provider
func NewStripeProvider(secretKey, webhookSecret string, logger *zap.Logger, opts ...Option) *StripeProvider {
	backend := stripe.GetBackend(stripe.APIBackend)
	s := &StripeProvider{
		customers:     customer.Client{B: backend, Key: secretKey},
		cards:         card.Client{B: backend, Key: secretKey},
		charges:       charge.Client{B: backend, Key: secretKey},
		refunds:       refund.Client{B: backend, Key: secretKey},
		webhookSecret: webhookSecret,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProviderName returns the provider name
func (s *StripeProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// CreateCustomer creates a Stripe customer
func (s *StripeProvider) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (*provider.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if req.Email != "" {
		params.Email = stripe.String(req.Email)
	}
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	started := time.Now()
	c, err := s.customers.New(params)
	s.metrics.ObserveStripeCall("customer.create", started)
	if err != nil {
		return nil, s.wrapError("customer.create", err)
	}

	s.logger.Info("Stripe customer created", zap.String("customer_id", c.ID))
	return &provider.Customer{ID: c.ID, Email: c.Email}, nil
}

// CreateCard saves a Stripe.js token as a card source on the customer
func (s *StripeProvider) CreateCard(ctx context.Context, customerID, token string) (*provider.Card, error) {
	params := &stripe.CardParams{
		Customer: stripe.String(customerID),
		Token:    stripe.String(token),
	}
	params.Context = ctx

	started := time.Now()
	c, err := s.cards.New(params)
	s.metrics.ObserveStripeCall("card.create", started)
	if err != nil {
		return nil, s.wrapError("card.create", err)
	}

	return &provider.Card{
		ID:       c.ID,
		Brand:    string(c.Brand),
		Last4:    c.Last4,
		ExpMonth: c.ExpMonth,
		ExpYear:  c.ExpYear,
	}, nil
}

// CreateCharge charges a saved card
func (s *StripeProvider) CreateCharge(ctx context.Context, req *provider.CreateChargeRequest) (*provider.Charge, error) {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(req.Currency),
		Customer:    stripe.String(req.CustomerID),
		Description: stripe.String(req.Description),
		Capture:     stripe.Bool(req.Capture),
	}
	params.Context = ctx
	if err := params.SetSource(req.SourceID); err != nil {
		return nil, err
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	started := time.Now()
	ch, err := s.charges.New(params)
	s.metrics.ObserveStripeCall("charge.create", started)
	if err != nil {
		return nil, s.wrapError("charge.create", err)
	}

	s.logger.Info("Stripe charge created",
		zap.String("charge_id", ch.ID),
		zap.Int64("amount", ch.Amount),
		zap.String("currency", string(ch.Currency)),
		zap.String("status", string(ch.Status)))
	return ToCharge(ch), nil
}

// RetrieveCharge fetches a charge by ID
func (s *StripeProvider) RetrieveCharge(ctx context.Context, chargeID string) (*provider.Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx

	started := time.Now()
	ch, err := s.charges.Get(chargeID, params)
	s.metrics.ObserveStripeCall("charge.retrieve", started)
	if err != nil {
		return nil, s.wrapError("charge.retrieve", err)
	}
	return ToCharge(ch), nil
}

// CreateRefund refunds amount against a charge
func (s *StripeProvider) CreateRefund(ctx context.Context, req *provider.CreateRefundRequest) (*provider.Refund, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(req.ChargeID),
		Amount: stripe.Int64(req.Amount),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	started := time.Now()
	r, err := s.refunds.New(params)
	s.metrics.ObserveStripeCall("refund.create", started)
	if err != nil {
		return nil, s.wrapError("refund.create", err)
	}

	s.logger.Info("Stripe refund created",
		zap.String("refund_id", r.ID),
		zap.String("charge_id", req.ChargeID),
		zap.Int64("amount", r.Amount))

	return &provider.Refund{
		ID:       r.ID,
		ChargeID: req.ChargeID,
		Amount:   r.Amount,
		Currency: string(r.Currency),
		Status:   string(r.Status),
	}, nil
}

// ConstructEvent verifies the Stripe-Signature header and parses the event
func (s *StripeProvider) ConstructEvent(payload []byte, signature string) (*provider.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidSignature,
			Message: "webhook signature verification failed",
			Details: err.Error(),
		}
	}

	return toWebhookEvent(&event, payload)
}

// ParseEvent parses a stored event payload without checking its signature
func (s *StripeProvider) ParseEvent(payload []byte) (*provider.WebhookEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook event: %w", err)
	}
	return toWebhookEvent(&event, payload)
}

func toWebhookEvent(event *stripe.Event, payload []byte) (*provider.WebhookEvent, error) {
	result := &provider.WebhookEvent{
		EventID:    event.ID,
		EventType:  string(event.Type),
		Livemode:   event.Livemode,
		APIVersion: event.APIVersion,
		Raw:        payload,
		CreatedAt:  time.Unix(event.Created, 0).UTC(),
	}
	if event.Data == nil {
		return result, nil
	}
	result.Object = event.Data.Raw

	switch event.Data.Object["object"] {
	case "charge":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("failed to parse charge: %w", err)
		}
		result.Charge = ToCharge(&ch)
	case "dispute":
		var d stripe.Dispute
		if err := json.Unmarshal(event.Data.Raw, &d); err != nil {
			return nil, fmt.Errorf("failed to parse dispute: %w", err)
		}
		result.Dispute = &provider.Dispute{
			ID:     d.ID,
			Status: string(d.Status),
			Amount: d.Amount,
		}
		if d.Charge != nil {
			result.Dispute.ChargeID = d.Charge.ID
		}
	}
	return result, nil
}

// ToCharge converts a stripe-go charge into the provider-neutral form
func ToCharge(ch *stripe.Charge) *provider.Charge {
	c := &provider.Charge{
		ID:             ch.ID,
		Amount:         ch.Amount,
		AmountRefunded: ch.AmountRefunded,
		Currency:       string(ch.Currency),
		Description:    ch.Description,
		Status:         string(ch.Status),
		Paid:           ch.Paid,
		Refunded:       ch.Refunded,
		Captured:       ch.Captured,
		Disputed:       ch.Disputed,
		ReceiptSent:    ch.ReceiptNumber != "",
		Created:        time.Unix(ch.Created, 0).UTC(),
	}
	if ch.Customer != nil {
		c.CustomerID = ch.Customer.ID
	}
	if ch.Source != nil {
		c.SourceID = ch.Source.ID
	}
	return c
}

// wrapError turns a *stripe.Error into a ProviderError that carries the
// message Stripe meant for the card holder.
func (s *StripeProvider) wrapError(operation string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		s.metrics.RecordStripeError(operation, string(stripeErr.Code))
		s.logger.Warn("Stripe API error",
			zap.String("operation", operation),
			zap.String("type", string(stripeErr.Type)),
			zap.String("code", string(stripeErr.Code)),
			zap.String("decline_code", string(stripeErr.DeclineCode)),
			zap.Int("http_status", stripeErr.HTTPStatusCode),
			zap.String("request_id", stripeErr.RequestID))
		return &provider.ProviderError{
			Code:        string(stripeErr.Code),
			Message:     stripeErr.Msg,
			DeclineCode: string(stripeErr.DeclineCode),
		}
	}

	s.metrics.RecordStripeError(operation, "")
	s.logger.Error("Stripe call failed",
		zap.String("operation", operation),
		zap.Error(err))
	return &provider.ProviderError{
		Code:    "api_error",
		Message: "Could not reach the payment processor. Please try again.",
		Details: err.Error(),
	}
}
