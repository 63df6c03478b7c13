package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditNote is a credit owed to the owner of an invoice. It is either
// applied to another invoice or refunded, never both.
type CreditNote struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID int64           `gorm:"not null;index" json:"invoice_id"`
	Value     decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"value"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Invoice      Invoice                 `gorm:"foreignKey:InvoiceID" json:"invoice"`
	Applications []CreditNoteApplication `gorm:"foreignKey:ParentID" json:"applications,omitempty"`
	Refunds      []CreditNoteRefund      `gorm:"foreignKey:ParentID" json:"refunds,omitempty"`
}

func (CreditNote) TableName() string {
	return "credit_notes"
}

// IsUnclaimed reports whether the credit note is still available. Callers
// must load Applications and Refunds first.
func (c *CreditNote) IsUnclaimed() bool {
	return len(c.Applications) == 0 && len(c.Refunds) == 0
}

// CreditNoteApplication records a credit note being spent on an invoice
type CreditNoteApplication struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID  int64     `gorm:"not null;index" json:"parent_id"`
	InvoiceID int64     `gorm:"not null;index" json:"invoice_id"`
	Time      time.Time `gorm:"not null" json:"time"`
	Reference string    `gorm:"size:255" json:"reference"`
}

func (CreditNoteApplication) TableName() string {
	return "credit_note_applications"
}

// CreditNoteRefund records a credit note being paid back to its owner
type CreditNoteRefund struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID  int64     `gorm:"not null;index" json:"parent_id"`
	Time      time.Time `gorm:"not null" json:"time"`
	Reference string    `gorm:"size:255" json:"reference"`
}

func (CreditNoteRefund) TableName() string {
	return "credit_note_refunds"
}

// StripeCreditNoteRefund extends a CreditNoteRefund with the Stripe charge the
// money went back to.
type StripeCreditNoteRefund struct {
	CreditNoteRefundID int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ChargeID           int64 `gorm:"not null;index" json:"charge_id"`

	Refund CreditNoteRefund `gorm:"foreignKey:CreditNoteRefundID;constraint:OnDelete:CASCADE" json:"refund"`
	Charge StripeCharge     `gorm:"foreignKey:ChargeID" json:"charge"`
}

func (StripeCreditNoteRefund) TableName() string {
	return "stripe_credit_note_refunds"
}
