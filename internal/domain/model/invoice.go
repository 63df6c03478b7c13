package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid   InvoiceStatus = "unpaid"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusRefunded InvoiceStatus = "refunded"
	InvoiceStatusVoid     InvoiceStatus = "void"
)

// Invoice is an amount owed by a user for their registration
type Invoice struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Status    InvoiceStatus   `gorm:"size:20;not null;default:'unpaid';index" json:"status"`
	Value     decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"value"`
	IssueTime time.Time       `json:"issue_time"`
	DueTime   time.Time       `json:"due_time"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) IsUnpaid() bool   { return i.Status == InvoiceStatusUnpaid }
func (i *Invoice) IsPaid() bool     { return i.Status == InvoiceStatusPaid }
func (i *Invoice) IsVoid() bool     { return i.Status == InvoiceStatusVoid }
func (i *Invoice) IsRefunded() bool { return i.Status == InvoiceStatusRefunded }

// Attendee links a user to the access code that lets anyone holding it view
// and pay that user's invoices.
type Attendee struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	Email      string    `gorm:"size:255" json:"email"`
	AccessCode string    `gorm:"size:32;not null;uniqueIndex" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Attendee) TableName() string {
	return "attendees"
}

// All returns every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Attendee{},
		&Invoice{},
		&PaymentBase{},
		&CustomerMapping{},
		&StripeCharge{},
		&StripePayment{},
		&CreditNote{},
		&CreditNoteApplication{},
		&CreditNoteRefund{},
		&StripeCreditNoteRefund{},
		&StripeWebhookEvent{},
	}
}
