package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionValidate(t *testing.T) {
	tx := &Transaction{
		Reference: "pf-abc",
		Amount:    decimal.NewFromInt(5000),
		Status:    TransactionStatusPending,
		Type:      TransactionTypeOneOff,
		Partners:  PaymentProviderPaystack,
		UserID:    1,
	}
	require.NoError(t, tx.Validate())

	tx.Status = "resolved"
	assert.Error(t, tx.Validate())

	tx.Status = TransactionStatusPending
	tx.Type = "recurring"
	assert.Error(t, tx.Validate())

	tx.Type = TransactionTypeOneOff
	tx.Email = "not-an-address"
	assert.Error(t, tx.Validate())

	tx.Email = "payer@example.com"
	assert.NoError(t, tx.Validate())
}

func TestTransactionIsTerminal(t *testing.T) {
	tx := &Transaction{Status: TransactionStatusPending}
	assert.False(t, tx.IsTerminal())

	tx.Status = TransactionStatusSuccess
	assert.True(t, tx.IsTerminal())

	tx.Status = TransactionStatusFailed
	assert.True(t, tx.IsTerminal())
}

func TestTransactionFundsSubscription(t *testing.T) {
	subID := uint(7)
	withSub := &Transaction{SubscriptionID: &subID}
	assert.True(t, withSub.FundsSubscription())

	prodID := uint(3)
	withProduct := &Transaction{ProductID: &prodID}
	assert.False(t, withProduct.FundsSubscription())
}

func TestTransactionPaidAtUnsetWhilePending(t *testing.T) {
	tx := &Transaction{Status: TransactionStatusPending}
	assert.Nil(t, tx.PaidAt)

	now := time.Now()
	tx.Status = TransactionStatusSuccess
	tx.PaidAt = &now
	require.NotNil(t, tx.PaidAt)
}
