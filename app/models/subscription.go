package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription billing frequency values.
const (
	SubscriptionFrequencyMonthly = "monthly"
	SubscriptionFrequencyYearly  = "yearly"
)

// Subscription is a recurring plan owned by exactly one of a user or an
// organization. It is created inactive and activated when its funding
// transaction succeeds; renewals extend ExpiryDate.
type Subscription struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Plan           string          `gorm:"type:varchar(50);not null" json:"plan"`
	Frequency      string          `gorm:"type:varchar(16);not null;default:'monthly'" json:"frequency"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	IsActive       bool            `gorm:"default:false;index" json:"is_active"`
	StartDate      *time.Time      `gorm:"type:timestamp;default:null" json:"start_date,omitempty"`
	ExpiryDate     *time.Time      `gorm:"type:timestamp;default:null;index" json:"expiry_date,omitempty"`
	TransactionID  *uint           `gorm:"default:null" json:"transaction_id,omitempty"`
	UserID         *uint           `gorm:"default:null;index" json:"user_id,omitempty"`
	OrganizationID *uint           `gorm:"default:null;index" json:"organization_id,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasSingleOwner reports whether exactly one of UserID/OrganizationID is set.
// Subscriptions belong to a user or an organization, never both, never neither.
func (s *Subscription) HasSingleOwner() bool {
	return (s.UserID != nil) != (s.OrganizationID != nil)
}

// NextExpiry returns the expiry a successful funding transaction at the given
// time extends the subscription to. An unexpired subscription is extended from
// its current expiry, a lapsed or fresh one from the payment time.
func (s *Subscription) NextExpiry(paidAt time.Time) time.Time {
	base := paidAt
	if s.ExpiryDate != nil && s.ExpiryDate.After(paidAt) {
		base = *s.ExpiryDate
	}
	if s.Frequency == SubscriptionFrequencyYearly {
		return base.AddDate(1, 0, 0)
	}
	return base.AddDate(0, 1, 0)
}
