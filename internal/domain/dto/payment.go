package dto

import (
	"time"
)

// StripePaymentDTO is a Stripe payment as returned by the payments API
type StripePaymentDTO struct {
	ID         int64     `json:"id"`
	InvoiceID  int64     `json:"invoice_id"`
	Time       time.Time `json:"time"`
	Reference  string    `json:"reference"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	ChargeID   string    `json:"charge_id"`
	Refundable string    `json:"refundable"`
	Refunded   bool      `json:"refunded"`
	Disputed   bool      `json:"disputed"`
}

// PaymentListResponse is the caller's payments, newest first
type PaymentListResponse struct {
	Payments []StripePaymentDTO `json:"payments"`
	Limit    int                `json:"limit"`
	HasMore  bool               `json:"has_more"`
}
