package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentBase is a payment made against an invoice, whatever the method
type PaymentBase struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID int64           `gorm:"not null;index" json:"invoice_id"`
	Time      time.Time       `gorm:"not null" json:"time"`
	Reference string          `gorm:"size:255" json:"reference"`
	Amount    decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"amount"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (PaymentBase) TableName() string {
	return "payments"
}

// StripePayment extends a PaymentBase with the Stripe charge that settled it.
// It shares its primary key with the parent payment.
type StripePayment struct {
	PaymentBaseID int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ChargeID      int64 `gorm:"not null;index" json:"charge_id"`

	Payment PaymentBase  `gorm:"foreignKey:PaymentBaseID;constraint:OnDelete:CASCADE" json:"payment"`
	Charge  StripeCharge `gorm:"foreignKey:ChargeID" json:"charge"`
}

func (StripePayment) TableName() string {
	return "stripe_payments"
}
