package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Transaction status values. A transaction starts pending and resolves exactly
// once into success or failed; terminal rows are never reopened.
const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
)

// Transaction type values.
const (
	TransactionTypeOneOff       = "one_off"
	TransactionTypeSubscription = "subscription"
)

// Payment provider constants used across payment-related models.
const (
	PaymentProviderPaystack = "paystack"
)

// Transaction records a single payment attempt against an external provider.
// Reference is the provider correlation id, assigned at initialize time and
// immutable afterwards.
type Transaction struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Reference      string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_transactions_reference" json:"reference"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status         string          `gorm:"type:varchar(16);not null;default:'pending';index" json:"status" validate:"oneof=pending success failed"`
	Type           string          `gorm:"type:varchar(16);not null" json:"type" validate:"oneof=one_off subscription"`
	Partners       string          `gorm:"type:varchar(32);not null;default:'paystack'" json:"partners"`
	ProductID      *uint           `gorm:"default:null;index" json:"product_id,omitempty"`
	SubscriptionID *uint           `gorm:"default:null;index" json:"subscription_id,omitempty"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	Email          string          `gorm:"type:varchar(255);default:null" json:"email,omitempty" validate:"omitempty,email"`
	PaidAt         *time.Time      `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate checks field-level constraints before the row is persisted.
func (t *Transaction) Validate() error {
	v := validator.New()
	return v.Struct(t)
}

// IsTerminal reports whether the transaction has resolved.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}

// FundsSubscription reports whether this transaction pays for a subscription.
func (t *Transaction) FundsSubscription() bool {
	return t.SubscriptionID != nil
}
