package payment

import (
	"context"

	"github.com/payflowhq/payflow/app/models"
	"github.com/shopspring/decimal"
)

// InitiateInput describes a payment attempt to start. Exactly one of
// ProductID/SubscriptionID must be set; it is the funding target.
type InitiateInput struct {
	UserID         uint
	Amount         decimal.Decimal
	ProductID      *uint
	SubscriptionID *uint
	Email          string
	CallbackURL    string
	AuthToken      string
}

// InitiateOutput carries the checkout handle for a freshly created pending
// transaction.
type InitiateOutput struct {
	Reference   string
	CheckoutURL string
	Transaction *models.Transaction
}

// ConfirmOutput is the state of a transaction after a confirm call.
// AlreadyResolved is true when the transaction was terminal before the call
// and no side effect ran.
type ConfirmOutput struct {
	Transaction     *models.Transaction
	AlreadyResolved bool
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// Notifier informs a user of a transaction outcome. Implementations own
// delivery and error handling; the orchestrator treats calls as
// fire-and-forget and never lets them affect transaction state.
type Notifier interface {
	TransactionSucceeded(ctx context.Context, tx *models.Transaction)
	TransactionFailed(ctx context.Context, tx *models.Transaction)
}
