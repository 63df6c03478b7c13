package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StripeCharge mirrors a charge held by Stripe. Amounts are in the
// currency's major unit, as on invoices.
type StripeCharge struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StripeID       string          `gorm:"column:stripe_id;uniqueIndex;not null;size:191" json:"stripe_id"`
	CustomerID     *int64          `gorm:"index" json:"customer_id,omitempty"`
	SourceID       string          `gorm:"size:100" json:"source_id"`
	Currency       string          `gorm:"size:10;not null" json:"currency"`
	Amount         decimal.Decimal `gorm:"type:decimal(9,2);not null" json:"amount"`
	AmountRefunded decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0" json:"amount_refunded"`
	Description    string          `json:"description"`
	Status         string          `gorm:"size:20" json:"status"`
	Paid           bool            `json:"paid"`
	Refunded       bool            `json:"refunded"`
	Captured       bool            `json:"captured"`
	Disputed       bool            `json:"disputed"`
	ReceiptSent    bool            `json:"receipt_sent"`
	ChargeCreated  *time.Time      `json:"charge_created,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *CustomerMapping `gorm:"foreignKey:CustomerID" json:"-"`
}

func (StripeCharge) TableName() string {
	return "stripe_charges"
}

// RefundableAmount is what can still be refunded on the charge.
func (c *StripeCharge) RefundableAmount() decimal.Decimal {
	return c.Amount.Sub(c.AmountRefunded)
}
