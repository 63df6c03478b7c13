package model

import (
	"time"

	"github.com/google/uuid"
)

// CustomerMapping maps a user to their Stripe customer
type CustomerMapping struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderCustomerID string    `gorm:"column:provider_customer_id;uniqueIndex;not null;size:100" json:"provider_customer_id"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	CustomerEmail      string    `gorm:"size:255" json:"customer_email"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (CustomerMapping) TableName() string {
	return "customer_mappings"
}
